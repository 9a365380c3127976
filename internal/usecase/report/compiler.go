package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/masoncl/review-reply/internal/diff"
	"github.com/masoncl/review-reply/internal/domain"
)

// Request carries one compilation's inputs: the commit facts, the raw
// unified diff from the authoritative retrieval source, and the externally
// produced findings. Summary, when set, overrides the descriptor's body
// summary.
type Request struct {
	Commit   domain.CommitDescriptor
	DiffText string
	Findings []domain.Finding
	Summary  string
}

// Result is the compiled reply plus the facts callers archive alongside it.
type Result struct {
	Body         string
	Anchored     int
	Unanchored   int
	TouchedPaths []string
}

// CompilerDeps captures the optional collaborators of a Compiler.
type CompilerDeps struct {
	Policy Policy
	Logger Logger
}

// Compiler turns (commit, diff, findings) into a plain-text reply body.
// A Compiler holds no cross-call state: the same request always yields a
// byte-identical result, and independent requests may be compiled in
// parallel by the caller.
type Compiler struct {
	policy Policy
	logger Logger
}

// NewCompiler constructs a Compiler. A zero Policy falls back to the
// defaults.
func NewCompiler(deps CompilerDeps) *Compiler {
	policy := deps.Policy
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	return &Compiler{policy: policy.normalised(), logger: deps.Logger}
}

// Compile runs the linear pipeline: parse, anchor, trim, assemble. A
// malformed diff or a trimmer/resolver contract violation aborts the whole
// compilation with nothing partial returned.
func (c *Compiler) Compile(ctx context.Context, req Request) (Result, error) {
	model, err := diff.Parse(req.DiffText)
	if err != nil {
		return Result{}, fmt.Errorf("parse diff for %s: %w", req.Commit.SHA, err)
	}

	anchors := resolveAnchors(model, req.Findings)
	plan := trim(model, anchors, c.policy)

	body, err := assembler{logger: c.logger}.assemble(ctx, req.Commit, model, plan, anchors, req.Summary)
	if err != nil {
		return Result{}, err
	}

	anchored := 0
	for _, a := range anchors {
		if a.Anchored {
			anchored++
		}
	}

	return Result{
		Body:         body,
		Anchored:     anchored,
		Unanchored:   len(anchors) - anchored,
		TouchedPaths: model.TouchedPaths(),
	}, nil
}

// InputHash fingerprints a request: recompiling identical inputs yields an
// identical hash and a byte-identical body, which is what the archive uses
// to witness idempotence.
func InputHash(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.Commit.SHA))
	h.Write([]byte{0})
	h.Write([]byte(req.DiffText))
	h.Write([]byte{0})
	if payload, err := json.Marshal(req.Findings); err == nil {
		h.Write(payload)
	}
	h.Write([]byte{0})
	h.Write([]byte(req.Summary))
	return hex.EncodeToString(h.Sum(nil))
}
