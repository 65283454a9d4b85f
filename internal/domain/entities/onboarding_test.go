//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
)

func TestOnboardingRecordClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		onboarded []string
		prs       int
		want      entities.OnboardingStatus
		skipped   bool
	}{
		{name: "all branches", onboarded: []string{"main", "master", "dev"}, want: entities.StatusFullyOnboarded},
		{name: "one branch", onboarded: []string{"dev"}, want: entities.StatusPartiallyOnboarded},
		{name: "two branches", onboarded: []string{"main", "dev"}, want: entities.StatusPartiallyOnboarded},
		{name: "no branch", want: entities.StatusNotOnboarded, skipped: true},
		{name: "no branch with a pull request", prs: 1, want: entities.StatusNotOnboarded},
	}

	for _, tt := range tests {
		t.Run("should classify "+tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			record := entities.OnboardingRecord{
				OnboardedBranches:    tt.onboarded,
				PullRequestSubmitted: tt.prs > 0,
				PullRequests:         tt.prs,
			}

			// when
			record.Classify(3)

			// then
			assert.Equal(t, tt.want, record.Status())
			assert.Equal(t, tt.skipped, record.Skipped())
			assert.False(t, record.FullyOnboarded && record.PartiallyOnboarded)
		})
	}

	t.Run("should never be fully onboarded without tracked branches", func(t *testing.T) {
		t.Parallel()

		// given
		record := entities.OnboardingRecord{}

		// when
		record.Classify(0)

		// then
		assert.Equal(t, entities.StatusNotOnboarded, record.Status())
	})
}

func TestFleetMetricsAdd(t *testing.T) {
	t.Parallel()

	t.Run("should keep fully, partially and not onboarded summing to total", func(t *testing.T) {
		t.Parallel()

		// given
		var metrics entities.FleetMetrics
		records := []entities.OnboardingRecord{
			{OnboardedBranches: []string{"main", "master", "dev"}},
			{OnboardedBranches: []string{"main"}, NotOnboardedBranches: []string{"master", "dev"}},
			{NotOnboardedBranches: []string{"main", "master", "dev"}},
			{
				NotOnboardedBranches: []string{"main", "master", "dev"},
				PullRequestSubmitted: true,
				PullRequests:         2,
			},
		}

		// when
		for _, record := range records {
			record.Classify(3)
			metrics.Add(record)
		}

		// then
		assert.Equal(t, 4, metrics.Total)
		assert.Equal(t, 1, metrics.FullyOnboarded)
		assert.Equal(t, 1, metrics.PartiallyOnboarded)
		assert.Equal(t, 2, metrics.NotOnboarded())
		assert.Equal(t, 2, metrics.PullRequestsSubmitted)
		assert.Equal(t, 1, metrics.Skipped)
		assert.Equal(t, metrics.Total, metrics.FullyOnboarded+metrics.PartiallyOnboarded+metrics.NotOnboarded())
	})
}
