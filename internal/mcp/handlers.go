package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tekoetch/investorscout/internal/consolidate"
	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/firstpass"
	"github.com/tekoetch/investorscout/internal/output"
	"github.com/tekoetch/investorscout/internal/verify"
)

func (s *Server) registerHandlers() {
	s.handlers["list_candidates"] = s.handleListCandidates
	s.handlers["get_candidate"] = s.handleGetCandidate
	s.handlers["search_candidates"] = s.handleSearchCandidates
	s.handlers["score_text"] = s.handleScoreText
	s.handlers["get_stats"] = s.handleGetStats
}

type listCandidatesParams struct {
	Grade     string `json:"grade"`
	GreenOnly bool   `json:"green_only"`
	Limit     int    `json:"limit"`
}

func (s *Server) handleListCandidates(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p listCandidatesParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}
	}

	opts := database.VerdictListOptions{
		AcceptedOnly: p.GreenOnly,
		Limit:        p.Limit,
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if p.Grade != "" && p.Grade != "all" {
		grade, err := consolidate.ParseGrade(p.Grade)
		if err != nil {
			return nil, err
		}
		opts.Grade = &grade
	}

	verdicts, err := s.db.ListVerdicts(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return verdicts, nil
}

type getCandidateParams struct {
	Name string `json:"name"`
}

func (s *Server) handleGetCandidate(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p getCandidateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	c, err := output.LoadCandidate(ctx, s.db, p.Name, s.config.Taxonomy())
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("candidate not found: %s", p.Name)
	}
	return c, nil
}

type searchParams struct {
	Query string `json:"query"`
}

func (s *Server) handleSearchCandidates(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p searchParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if p.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	results, err := s.db.SearchVerdicts(ctx, p.Query)
	if err != nil {
		return nil, fmt.Errorf("search error: %w", err)
	}
	return results, nil
}

type scoreTextParams struct {
	Text string `json:"text"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// scoreTextResult mirrors the CLI score report
type scoreTextResult struct {
	FirstPass  firstpass.Result `json:"first_pass"`
	SecondPass *verify.Outcome  `json:"second_pass,omitempty"`
}

func (s *Server) handleScoreText(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p scoreTextParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if strings.TrimSpace(p.Text) == "" {
		return nil, fmt.Errorf("text is required")
	}

	result := scoreTextResult{FirstPass: s.first.Score(p.Text, "", p.URL)}
	if p.Name != "" {
		out := s.second.Score(p.Text, p.URL, verify.NewState(p.Name, nil))
		result.SecondPass = &out
	}
	return result, nil
}

func (s *Server) handleGetStats(ctx context.Context, params json.RawMessage) (interface{}, error) {
	stats, err := s.db.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return stats, nil
}

// Resource handlers

func (s *Server) handleReadResource(ctx context.Context, uri string) (string, error) {
	switch uri {
	case "scout://stats":
		return s.getResourceStats(ctx)
	case "scout://verdicts/green":
		return s.getResourceVerdicts(ctx, "Green List", database.VerdictListOptions{AcceptedOnly: true})
	case "scout://verdicts/pending":
		pending := consolidate.GradePending
		return s.getResourceVerdicts(ctx, "Pending Candidates", database.VerdictListOptions{Grade: &pending})
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

func (s *Server) getResourceStats(ctx context.Context) (string, error) {
	stats, err := s.db.GetStats(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := output.TableTo(&b, stats); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) getResourceVerdicts(ctx context.Context, title string, opts database.VerdictListOptions) (string, error) {
	verdicts, err := s.db.ListVerdicts(ctx, opts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d)\n%s\n\n", title, len(verdicts), strings.Repeat("=", len(title)))

	if len(verdicts) == 0 {
		b.WriteString("No candidates yet. Run 'scout run' to discover and grade candidates.\n")
		return b.String(), nil
	}

	for _, v := range verdicts {
		org := ""
		if v.Organization != "" {
			org = " (" + v.Organization + ")"
		}
		fmt.Fprintf(&b, "- %s%s | %s | %.2f", v.Name, org, v.Grade, v.FinalScore)
		if v.URL != "" {
			fmt.Fprintf(&b, " | %s", v.URL)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
