package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/onboarding/internal/domain/entities"
)

const branchSeparator = ", "

// Header is the fixed column set of the onboarding report.
//
//nolint:gochecknoglobals // fixed report layout
var Header = []string{
	"Repository",
	"Onboarded",
	"Partially Onboarded",
	"Onboarded Branches",
	"Not Onboarded Branches",
	"PR Submitted",
}

// Uploader copies a finished report somewhere durable.
type Uploader interface {
	Upload(ctx context.Context, upload entities.UploadSettings, localPath string) error
}

// CSVReportRepository writes one row per repository to settings.Report.Path,
// replacing any previous report, and hands the file to the uploader when an
// upload target is configured.
type CSVReportRepository struct {
	uploader Uploader
}

// NewCSVReportRepository creates a CSV report writer.
func NewCSVReportRepository(uploader Uploader) *CSVReportRepository {
	return &CSVReportRepository{uploader: uploader}
}

func (r *CSVReportRepository) Write(
	ctx context.Context,
	settings *entities.Settings,
	report *entities.AuditReport,
) error {
	reportPath := settings.Report.Path
	if err := writeCSV(reportPath, report.Records); err != nil {
		return err
	}
	logger.Infof("Metrics saved to %s", reportPath)

	if !settings.Report.Upload.Enabled() {
		return nil
	}
	if err := r.uploader.Upload(ctx, settings.Report.Upload, reportPath); err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}
	return nil
}

func writeCSV(reportPath string, records []entities.OnboardingRecord) error {
	if dir := filepath.Dir(reportPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory %q: %w", dir, err)
		}
	}

	file, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("failed to create report %q: %w", reportPath, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if writeErr := writer.Write(Header); writeErr != nil {
		return fmt.Errorf("failed to write report header: %w", writeErr)
	}
	for _, record := range records {
		if writeErr := writer.Write(Row(record)); writeErr != nil {
			return fmt.Errorf("failed to write report row for %q: %w", record.Repository.Name, writeErr)
		}
	}

	writer.Flush()
	if flushErr := writer.Error(); flushErr != nil {
		return fmt.Errorf("failed to flush report %q: %w", reportPath, flushErr)
	}
	return file.Close()
}

// Row renders one record in Header order.
func Row(record entities.OnboardingRecord) []string {
	return []string{
		record.Repository.Name,
		yesNo(record.FullyOnboarded),
		yesNo(record.PartiallyOnboarded),
		strings.Join(record.OnboardedBranches, branchSeparator),
		strings.Join(record.NotOnboardedBranches, branchSeparator),
		yesNo(record.PullRequestSubmitted),
	}
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}
