package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lmx/pkg/usecase"
)

func TestErrors_SentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrInvalidInput", usecase.ErrInvalidInput},
		{"ErrClientUUIDMissing", usecase.ErrClientUUIDMissing},
		{"ErrAssessmentNotFound", usecase.ErrAssessmentNotFound},
		{"ErrReportNotFound", usecase.ErrReportNotFound},
		{"ErrResultNotFound", usecase.ErrResultNotFound},
		{"ErrReportIndexMissing", usecase.ErrReportIndexMissing},
		{"ErrAssessmentExists", usecase.ErrAssessmentExists},
		{"ErrReportExists", usecase.ErrReportExists},
		{"ErrTemplateInvalid", usecase.ErrTemplateInvalid},
		{"ErrVendorNotConfigured", usecase.ErrVendorNotConfigured},
		{"ErrRefreshFailed", usecase.ErrRefreshFailed},
		{"ErrVendorRequest", usecase.ErrVendorRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.err).NotNil()
		})
	}
}

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	gt.Bool(t, errors.Is(usecase.ErrAssessmentNotFound, usecase.ErrReportNotFound)).False()
	gt.Bool(t, errors.Is(usecase.ErrAssessmentExists, usecase.ErrReportExists)).False()
	gt.Bool(t, errors.Is(usecase.ErrRefreshFailed, usecase.ErrVendorNotConfigured)).False()
}

func TestPublicMessage(t *testing.T) {
	gt.Value(t, usecase.PublicMessage(errors.New("plain"))).Equal("")
	gt.Value(t, usecase.PublicMessage(nil)).Equal("")
}
