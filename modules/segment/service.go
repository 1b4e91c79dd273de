package segment

import (
	"context"

	"github.com/go-monolith/mono"
)

func (m *Module) classify(ctx context.Context, req ClassifyRequest, _ *mono.Msg) (ProfileResponse, error) {
	var resp ProfileResponse
	profile, err := m.classifier.Classify(ctx, req.CustomerID)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Profile = profile
	return resp, nil
}

func (m *Module) listCustomers(ctx context.Context, req ListCustomersRequest, _ *mono.Msg) (ListCustomersResponse, error) {
	var resp ListCustomersResponse
	customers, total, err := m.classifier.ListCustomers(ctx, req)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Customers = customers
	resp.Total = total
	return resp, nil
}

func (m *Module) getThresholds(ctx context.Context, _ ThresholdsRequest, _ *mono.Msg) (ThresholdsResponse, error) {
	var resp ThresholdsResponse
	th, err := m.classifier.Thresholds(ctx)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Thresholds = th
	return resp, nil
}

func (m *Module) setThresholds(ctx context.Context, req ThresholdsRequest, _ *mono.Msg) (ThresholdsResponse, error) {
	var resp ThresholdsResponse
	th, err := m.classifier.SetThresholds(ctx, req.VIPThreshold, req.ChurnWindowDays)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	m.logger.Info("Segment thresholds updated",
		"vip_threshold", th.VIPThreshold, "churn_window_days", th.ChurnWindowDays)
	resp.Thresholds = th
	return resp, nil
}
