package ai

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pgauin01/hustlebot/internal/model"
)

const (
	// Proposal prompts carry only a short slice of the description; the
	// output must fit 150 words, so more context adds cost, not quality.
	maxProposalDescChars = 800
	// Tailoring needs the full requirements, so the cap is generous.
	maxTailorDescChars = 5000
)

const drafterSystemPrompt = "You are an expert freelance application writer. You write tight, specific, truthful copy."

// LLMDrafter implements model.Drafter, producing proposal drafts and tailored
// resumes for individual jobs.
type LLMDrafter struct {
	provider LLMProvider
	logger   *slog.Logger
}

// NewLLMDrafter creates a drafter backed by provider.
func NewLLMDrafter(provider LLMProvider, logger *slog.Logger) *LLMDrafter {
	return &LLMDrafter{provider: provider, logger: logger}
}

// DraftProposal writes a short proposal for job on behalf of the candidate
// described by profile.
func (d *LLMDrafter) DraftProposal(ctx context.Context, job model.Job, profile string) (string, error) {
	var promptBuf bytes.Buffer
	if err := DraftProposalTemplate.Execute(&promptBuf, struct {
		Profile     string
		Title       string
		Company     string
		Description string
	}{
		Profile:     truncate(profile, maxProfileChars),
		Title:       job.Title,
		Company:     job.Company,
		Description: truncate(job.Description, maxProposalDescChars),
	}); err != nil {
		return "", fmt.Errorf("render proposal prompt: %w", err)
	}

	text, err := d.provider.Complete(ctx, drafterSystemPrompt, promptBuf.String())
	if err != nil {
		return "", fmt.Errorf("draft proposal: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// TailorResume rewrites resume to target job.
func (d *LLMDrafter) TailorResume(ctx context.Context, job model.Job, resume string) (string, error) {
	var promptBuf bytes.Buffer
	if err := TailorResumeTemplate.Execute(&promptBuf, struct {
		Title       string
		Company     string
		Description string
		Resume      string
	}{
		Title:       job.Title,
		Company:     job.Company,
		Description: truncate(job.Description, maxTailorDescChars),
		Resume:      resume,
	}); err != nil {
		return "", fmt.Errorf("render tailor prompt: %w", err)
	}

	text, err := d.provider.Complete(ctx, drafterSystemPrompt, promptBuf.String())
	if err != nil {
		return "", fmt.Errorf("tailor resume: %w", err)
	}
	return strings.TrimSpace(text), nil
}
