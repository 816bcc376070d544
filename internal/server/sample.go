package server

import (
	"time"

	"rfpdesk/internal/utils"
	"rfpdesk/pkg/types"
)

// Showcase entries rendered on the history page before the user has any
// uploads of their own.

func sampleDocuments() []*types.Document {
	return []*types.Document{
		{
			ID:        "sample-123",
			FileName:  "Unirail_RFP_2023-57.pdf",
			FileType:  "application/pdf",
			FileSize:  3355443,
			CreatedAt: time.Date(2023, time.September, 18, 14, 32, 0, 0, time.UTC),
		},
		{
			ID:        "sample-456",
			FileName:  "Accessibility_RFP_2023-12.pdf",
			FileType:  "application/pdf",
			FileSize:  4928307,
			CreatedAt: time.Date(2023, time.October, 5, 9, 47, 0, 0, time.UTC),
		},
	}
}

func sampleAnalysis(documentID string) *types.DocumentAnalysis {
	switch documentID {
	case "sample-123":
		return &types.DocumentAnalysis{
			ID:          "sample-analysis-123",
			DocumentID:  documentID,
			ProjectName: utils.StringPtr("Railway Signaling System Upgrade"),
			Deadline:    utils.StringPtr("October 15, 2023"),
			Budget:      utils.StringPtr("$2.5M - $3.2M"),
			Summary: utils.StringPtr("Unirail is seeking proposals for upgrading the signaling infrastructure " +
				"across the northeastern corridor. The project aims to enhance safety, improve reliability, " +
				"and increase train frequency capabilities through modern signaling technologies."),
			Requirements: []string{
				"Replace outdated signaling equipment across 15 stations",
				"Implement modern ETCS Level 2 signaling protocol",
				"Ensure compatibility with existing train control systems",
				"Provide training for operations staff",
				"Deliver comprehensive documentation",
			},
			Stakeholders: []string{
				"Operations Department",
				"Safety & Compliance Team",
				"IT Infrastructure Division",
				"Station Managers",
			},
			EvaluationCriteria: []string{
				"Technical expertise (30%)",
				"Previous experience with similar projects (25%)",
				"Cost efficiency (20%)",
				"Implementation timeline (15%)",
				"References and track record (10%)",
			},
			SubmissionInstructions: utils.StringPtr("Proposals must be submitted electronically by 5:00 PM EST " +
				"on the deadline date. All submissions should include technical specifications, project timeline, " +
				"detailed budget breakdown, and team qualification documents."),
			ContactInformation: utils.StringPtr("procurement@unirail.example.com"),
			Status:             types.AnalysisStatusComplete,
		}
	case "sample-456":
		return &types.DocumentAnalysis{
			ID:          "sample-analysis-456",
			DocumentID:  documentID,
			ProjectName: utils.StringPtr("Station Accessibility Improvements"),
			Deadline:    utils.StringPtr("November 30, 2023"),
			Budget:      utils.StringPtr("$1.8M - $2.3M"),
			Summary: utils.StringPtr("This project focuses on enhancing accessibility across key stations in the " +
				"Unirail network to comply with updated accessibility regulations and improve service for all passengers."),
			Requirements: []string{
				"Install elevators at 5 key stations",
				"Upgrade platform edge detection systems",
				"Implement tactile guidance paths",
				"Enhance audio announcement systems",
				"Revise signage for improved visibility",
			},
			Stakeholders: []string{
				"Accessibility Compliance Team",
				"Passenger Experience Department",
				"Engineering Division",
				"Legal Department",
			},
			EvaluationCriteria: []string{
				"Compliance with accessibility standards (35%)",
				"Innovation in solutions (20%)",
				"Cost efficiency (20%)",
				"Implementation timeline (15%)",
				"Minimal service disruption (10%)",
			},
			SubmissionInstructions: utils.StringPtr("Proposals must include detailed designs, implementation " +
				"methodology, timeline with milestones, and references from similar completed projects. " +
				"Electronic submissions only."),
			ContactInformation: utils.StringPtr("accessibility@unirail.example.com"),
			Status:             types.AnalysisStatusComplete,
		}
	default:
		return nil
	}
}
