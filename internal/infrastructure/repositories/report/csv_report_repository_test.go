//go:build unit

package report_test

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
	"github.com/rios0rios0/onboarding/internal/infrastructure/repositories/report"
)

type spyUploader struct {
	err       error
	calls     int
	lastPath  string
	lastInput entities.UploadSettings
}

func (s *spyUploader) Upload(_ context.Context, upload entities.UploadSettings, localPath string) error {
	s.calls++
	s.lastPath = localPath
	s.lastInput = upload
	return s.err
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func newReport() *entities.AuditReport {
	return &entities.AuditReport{
		Organization: "sig-se-demo",
		Branches:     []string{"main", "master", "dev"},
		Records: []entities.OnboardingRecord{
			{
				Repository:        entities.Repository{Owner: "sig-se-demo", Name: "webgoat-demo"},
				OnboardedBranches: []string{"main", "master", "dev"},
				FullyOnboarded:    true,
			},
			{
				Repository:           entities.Repository{Owner: "sig-se-demo", Name: "juice-shop"},
				OnboardedBranches:    []string{"main", "dev"},
				NotOnboardedBranches: []string{"master"},
				PartiallyOnboarded:   true,
				PullRequestSubmitted: true,
				PullRequests:         1,
			},
			{
				Repository:           entities.Repository{Owner: "sig-se-demo", Name: "legacy, api"},
				NotOnboardedBranches: []string{"main", "master", "dev"},
			},
		},
	}
}

func TestCSVReportRepositoryWrite(t *testing.T) {
	t.Parallel()

	t.Run("should write the header and one row per repository", func(t *testing.T) {
		t.Parallel()

		// given
		settings := entities.NewDefaultSettings()
		settings.Report.Path = filepath.Join(t.TempDir(), "reports", "onboarding_metrics.csv")
		uploader := &spyUploader{}
		repository := report.NewCSVReportRepository(uploader)

		// when
		err := repository.Write(context.Background(), settings, newReport())

		// then
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			report.Header,
			{"webgoat-demo", "Yes", "No", "main, master, dev", "", "No"},
			{"juice-shop", "No", "Yes", "main, dev", "master", "Yes"},
			{"legacy, api", "No", "No", "", "main, master, dev", "No"},
		}, readCSV(t, settings.Report.Path))
		assert.Zero(t, uploader.calls)
	})

	t.Run("should overwrite a previous report", func(t *testing.T) {
		t.Parallel()

		// given
		settings := entities.NewDefaultSettings()
		settings.Report.Path = filepath.Join(t.TempDir(), "onboarding_metrics.csv")
		require.NoError(t, os.WriteFile(settings.Report.Path, []byte("stale,data\n1,2\n3,4\n5,6\n7,8\n"), 0o600))
		repository := report.NewCSVReportRepository(&spyUploader{})

		// when
		err := repository.Write(context.Background(), settings, &entities.AuditReport{})

		// then
		require.NoError(t, err)
		assert.Equal(t, [][]string{report.Header}, readCSV(t, settings.Report.Path))
	})

	t.Run("should upload the report when a bucket is configured", func(t *testing.T) {
		t.Parallel()

		// given
		settings := entities.NewDefaultSettings()
		settings.Report.Path = filepath.Join(t.TempDir(), "onboarding_metrics.csv")
		settings.Report.Upload = entities.UploadSettings{Endpoint: "minio.local:9000", Bucket: "reports"}
		uploader := &spyUploader{}
		repository := report.NewCSVReportRepository(uploader)

		// when
		err := repository.Write(context.Background(), settings, newReport())

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, uploader.calls)
		assert.Equal(t, settings.Report.Path, uploader.lastPath)
		assert.Equal(t, "reports", uploader.lastInput.Bucket)
	})

	t.Run("should fail when the upload fails", func(t *testing.T) {
		t.Parallel()

		// given
		settings := entities.NewDefaultSettings()
		settings.Report.Path = filepath.Join(t.TempDir(), "onboarding_metrics.csv")
		settings.Report.Upload = entities.UploadSettings{Endpoint: "minio.local:9000", Bucket: "reports"}
		repository := report.NewCSVReportRepository(&spyUploader{err: errors.New("access denied")})

		// when
		err := repository.Write(context.Background(), settings, newReport())

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upload report")
	})

	t.Run("should fail when the path cannot be created", func(t *testing.T) {
		t.Parallel()

		// given
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
		settings := entities.NewDefaultSettings()
		settings.Report.Path = filepath.Join(blocker, "onboarding_metrics.csv")
		repository := report.NewCSVReportRepository(&spyUploader{})

		// when
		err := repository.Write(context.Background(), settings, newReport())

		// then
		require.Error(t, err)
	})
}

func TestMinioUploaderUpload(t *testing.T) {
	t.Parallel()

	t.Run("should fail for a missing local file before contacting storage", func(t *testing.T) {
		t.Parallel()

		// given
		uploader := report.NewMinioUploader()
		upload := entities.UploadSettings{
			Endpoint:  "127.0.0.1:1",
			Bucket:    "reports",
			AccessKey: "minio",
			SecretKey: "minio123",
		}

		// when
		err := uploader.Upload(context.Background(), upload, filepath.Join(t.TempDir(), "missing.csv"))

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upload")
	})
}
