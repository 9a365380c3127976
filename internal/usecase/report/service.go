package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/masoncl/review-reply/internal/domain"
)

// CommitSource retrieves commit facts and the authoritative unified diff.
// The compiler never re-derives diff content from any other source.
type CommitSource interface {
	// Commit resolves a revision and returns the descriptor plus the raw
	// diff text against the first parent.
	Commit(ctx context.Context, ref string) (domain.CommitDescriptor, string, error)

	// FromPatchFile reads a git-show style patch file into the same pair,
	// for replying to patches not present in the local repository.
	FromPatchFile(path string) (domain.CommitDescriptor, string, error)
}

// ArtifactWriter persists a rendered reply to disk.
type ArtifactWriter interface {
	Write(ctx context.Context, artifact domain.ReportArtifact) (string, error)
}

// Store archives compiled replies.
type Store interface {
	SaveReport(ctx context.Context, entry ReportEntry) error
	ListReports(ctx context.Context, limit int) ([]ReportEntry, error)
	Close() error
}

// ReportEntry is one archived reply.
type ReportEntry struct {
	ReportID   string
	SHA        string
	Repository string
	Subject    string
	Subsystems []string
	Anchored   int
	Unanchored int
	InputHash  string
	Body       string
	CreatedAt  time.Time
}

// SubsystemDetector maps touched paths to subsystem tags. The pipeline
// treats the mapping as an external collaborator.
type SubsystemDetector func(paths []string) []string

// ServiceDeps captures the collaborators for the reply service. Source and
// Compiler are required; the rest are optional.
type ServiceDeps struct {
	Source     CommitSource
	Compiler   *Compiler
	Store      Store
	Writer     ArtifactWriter
	Subsystems SubsystemDetector
	Logger     Logger
	Repository string
}

// Service drives one reply end to end: retrieve, compile, archive, write.
type Service struct {
	deps ServiceDeps
}

// NewService validates and stores the service dependencies.
func NewService(deps ServiceDeps) (*Service, error) {
	if err := validateDependencies(deps); err != nil {
		return nil, err
	}
	return &Service{deps: deps}, nil
}

func validateDependencies(deps ServiceDeps) error {
	if deps.Source == nil {
		return fmt.Errorf("report service requires a commit source")
	}
	if deps.Compiler == nil {
		return fmt.Errorf("report service requires a compiler")
	}
	return nil
}

// ReplyRequest describes one reply to compile. Exactly one of Ref or
// PatchFile selects the commit.
type ReplyRequest struct {
	Ref       string
	PatchFile string
	Findings  []domain.Finding
	Summary   string
	OutputDir string // artifact written only when non-empty and a writer is wired
	NoArchive bool
}

// ReplyResult is what the CLI shows the operator.
type ReplyResult struct {
	Body         string
	SHA          string
	Subject      string
	ReportID     string
	ArtifactPath string
	Subsystems   []string
	Anchored     int
	Unanchored   int
}

// CompileReply retrieves the commit, compiles the reply, and fans the
// result out to the archive and the artifact writer.
func (s *Service) CompileReply(ctx context.Context, req ReplyRequest) (ReplyResult, error) {
	desc, diffText, err := s.retrieve(ctx, req)
	if err != nil {
		return ReplyResult{}, err
	}

	compileReq := Request{
		Commit:   desc,
		DiffText: diffText,
		Findings: req.Findings,
		Summary:  req.Summary,
	}
	compiled, err := s.deps.Compiler.Compile(ctx, compileReq)
	if err != nil {
		return ReplyResult{}, err
	}

	result := ReplyResult{
		Body:       compiled.Body,
		SHA:        desc.SHA,
		Subject:    desc.Subject,
		Anchored:   compiled.Anchored,
		Unanchored: compiled.Unanchored,
	}
	if s.deps.Subsystems != nil {
		result.Subsystems = s.deps.Subsystems(compiled.TouchedPaths)
	}

	if s.deps.Store != nil && !req.NoArchive {
		entry := ReportEntry{
			ReportID:   uuid.NewString(),
			SHA:        desc.SHA,
			Repository: s.deps.Repository,
			Subject:    desc.Subject,
			Subsystems: result.Subsystems,
			Anchored:   compiled.Anchored,
			Unanchored: compiled.Unanchored,
			InputHash:  InputHash(compileReq),
			Body:       compiled.Body,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.deps.Store.SaveReport(ctx, entry); err != nil {
			// Archival is best effort; the reply itself is the product.
			s.warn(ctx, "failed to archive report", map[string]interface{}{
				"sha":   desc.SHA,
				"error": err.Error(),
			})
		} else {
			result.ReportID = entry.ReportID
		}
	}

	if s.deps.Writer != nil && req.OutputDir != "" {
		path, err := s.deps.Writer.Write(ctx, domain.ReportArtifact{
			OutputDir:  req.OutputDir,
			Repository: s.deps.Repository,
			SHA:        desc.SHA,
			Body:       compiled.Body,
		})
		if err != nil {
			return ReplyResult{}, fmt.Errorf("write report artifact: %w", err)
		}
		result.ArtifactPath = path
	}

	return result, nil
}

// History lists recent archived replies, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]ReportEntry, error) {
	if s.deps.Store == nil {
		return nil, fmt.Errorf("report archive is not enabled")
	}
	if limit <= 0 {
		limit = 20
	}
	return s.deps.Store.ListReports(ctx, limit)
}

func (s *Service) retrieve(ctx context.Context, req ReplyRequest) (domain.CommitDescriptor, string, error) {
	if req.PatchFile != "" {
		desc, diffText, err := s.deps.Source.FromPatchFile(req.PatchFile)
		if err != nil {
			return domain.CommitDescriptor{}, "", fmt.Errorf("read patch file: %w", err)
		}
		return desc, diffText, nil
	}

	ref := req.Ref
	if ref == "" {
		ref = "HEAD"
	}
	desc, diffText, err := s.deps.Source.Commit(ctx, ref)
	if err != nil {
		return domain.CommitDescriptor{}, "", fmt.Errorf("retrieve commit %s: %w", ref, err)
	}
	return desc, diffText, nil
}

func (s *Service) warn(ctx context.Context, msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.LogWarning(ctx, msg, fields)
	}
}
