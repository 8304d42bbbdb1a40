package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fleetworks/workorder-api/internal/service"
	"github.com/fleetworks/workorder-api/pkg/config"
)

// seed provisions the bootstrap staff account and, on an empty store, a couple
// of example work orders so a fresh install has something on the dashboard.
func seed(cfg *config.Config, logr *zap.Logger, auth *service.AuthService, requests *service.RequestService) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := auth.EnsureBootstrapStaff(ctx, cfg.Seed.StaffEmail, cfg.Seed.StaffPassword); err != nil {
		logr.Sugar().Warnw("bootstrap staff account failed", "error", err)
	}

	if !cfg.Seed.ExampleRequests {
		return
	}
	existing, err := requests.List(ctx)
	if err != nil || len(existing) > 0 {
		return
	}

	mileage := 82000
	examples := []service.CreateRequestRequest{
		{
			CustomerName: "John Doe",
			ContactInfo:  "555-0123",
			VehicleInfo:  "2018 Ford F-150",
			Mileage:      &mileage,
			Services: &service.ServiceSelection{
				Filters:          service.GroupSelection{Items: []string{"Oil filter"}},
				Fluids:           service.GroupSelection{Items: []string{"Engine oil"}},
				EngineOilWeights: []string{"15W-40"},
				EngineOilTypes:   []string{"Blend"},
				IssueText:        "Routine oil change and filter service.",
			},
		},
		{
			CustomerName: "Alice Smith",
			ContactInfo:  "alice@example.com",
			VehicleInfo:  "2020 Peterbilt 579",
			IsUrgent:     true,
			Services: &service.ServiceSelection{
				Components: service.GroupSelection{Items: []string{"Water pump"}},
				Fluids:     service.GroupSelection{Items: []string{"Coolant"}},
				IssueText:  "Coolant leak near the front of the engine, losing fluid daily.",
			},
		},
	}

	for _, example := range examples {
		if _, err := requests.Create(ctx, example); err != nil {
			logr.Sugar().Warnw("example request seed failed", "customer", example.CustomerName, "error", err)
		}
	}
}
