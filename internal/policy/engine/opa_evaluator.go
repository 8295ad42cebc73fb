// Package engine evaluates resource access decisions with an embedded OPA Rego policy.
package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/open-policy-agent/opa/v1/rego"
)

const accessQuery = "data.todo.access.allow"

// accessPolicy grants access when the caller created the resource.
const accessPolicy = `package todo.access

default allow := false

allow if {
	input.subject_id != ""
	input.subject_id == input.owner_id
}
`

// Evaluator decides whether a subject may act on a resource owned by ownerID.
type Evaluator interface {
	AllowAccess(ctx context.Context, subjectID, ownerID int64) (bool, error)
}

// OPAEvaluator evaluates the access policy with an in-process Rego query prepared once.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles the access policy. A compile error is a programming error in the policy.
func NewOPAEvaluator(ctx context.Context) (*OPAEvaluator, error) {
	return newEvaluator(ctx, accessPolicy)
}

func newEvaluator(ctx context.Context, policy string) (*OPAEvaluator, error) {
	q, err := rego.New(
		rego.Query(accessQuery),
		rego.Module("access.rego", policy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile access policy: %w", err)
	}
	return &OPAEvaluator{query: q}, nil
}

// AllowAccess evaluates the policy for subjectID acting on a resource owned by ownerID.
// Ids are passed to Rego as strings so large values compare exactly.
func (e *OPAEvaluator) AllowAccess(ctx context.Context, subjectID, ownerID int64) (bool, error) {
	input := map[string]any{
		"subject_id": idString(subjectID),
		"owner_id":   idString(ownerID),
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("eval access policy: %w", err)
	}
	return rs.Allowed(), nil
}

// HealthCheck evaluates the policy against a fixed owner/non-owner pair and fails if either
// decision is wrong. Does not touch the database.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	ok, err := e.AllowAccess(ctx, 1, 1)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("access policy denied the owner")
	}
	ok, err = e.AllowAccess(ctx, 1, 2)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("access policy allowed a non-owner")
	}
	return nil
}

func idString(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
