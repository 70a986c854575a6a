package formio

import (
	"context"
	"errors"

	"github.com/formio/formio.go/pkg/models"
)

// SubmitHook inspects or rewrites a submission before it is sent. Returned
// validation errors stop the submission and are handed back to the caller;
// a returned error aborts it.
type SubmitHook func(ctx context.Context, sub *models.Submission) (ValidationErrors, error)

// SubmitHooks run, in order, before a submission is saved.
type SubmitHooks struct {
	BeforeSubmit     []SubmitHook
	CustomValidation []SubmitHook
}

// Run calls BeforeSubmit hooks and then CustomValidation hooks, stopping at
// the first hook that reports validation errors.
func (h SubmitHooks) Run(ctx context.Context, sub *models.Submission) (ValidationErrors, error) {
	for _, chain := range [][]SubmitHook{h.BeforeSubmit, h.CustomValidation} {
		for _, hook := range chain {
			verrs, err := hook(ctx, sub)
			if err != nil {
				return nil, err
			}
			if len(verrs) > 0 {
				return verrs, nil
			}
		}
	}
	return nil, nil
}

// Submit runs hooks over sub and saves it when they pass. Validation
// failures, local or reported by the server, come back as ValidationErrors
// with a nil error.
func (f *Formio) Submit(ctx context.Context, sub *models.Submission, hooks SubmitHooks, opts ...RequestOption) (*models.Submission, ValidationErrors, error) {
	verrs, err := hooks.Run(ctx, sub)
	if err != nil || len(verrs) > 0 {
		return nil, verrs, err
	}
	saved, err := f.SaveSubmission(ctx, sub, opts...)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && len(apiErr.Details) > 0 {
			return nil, apiErr.Details, nil
		}
		return nil, nil, err
	}
	return saved, nil, nil
}
