package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/recruvia/cv-insight/internal/index"
	"github.com/recruvia/cv-insight/internal/model"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	toolSearchSummaries = "search_cv_summaries"
	toolSearchDetails   = "search_cv_details"
	toolListAll         = "list_all_cvs"

	defaultSummariesTopK = 10
	defaultDetailsTopK   = 5
)

// CVLister enumerates CVs with their summaries, newest upload first.
type CVLister interface {
	ListWithSummaries(ctx context.Context) ([]model.CV, error)
}

// Toolset is the closed set of retrieval primitives the agent may invoke.
type Toolset struct {
	store  index.Store
	cvs    CVLister
	logger *zap.Logger
}

func NewToolset(store index.Store, cvs CVLister, logger *zap.Logger) *Toolset {
	return &Toolset{store: store, cvs: cvs, logger: logger}
}

// SearchSummaries searches the summary documents for cross-candidate
// comparison and ranking, best match first.
func (t *Toolset) SearchSummaries(ctx context.Context, query string, topK int) (string, error) {
	if topK <= 0 {
		topK = defaultSummariesTopK
	}
	t.logger.Info("searching CV summaries", zap.String("query", query), zap.Int("top_k", topK))

	results, err := t.store.Query(ctx, query, topK, index.Filter{Type: index.TypeSummary})
	if err != nil {
		return "", fmt.Errorf("search summaries: %w", err)
	}
	if len(results) == 0 {
		return "No CVs found matching your criteria.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d candidate(s):\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 60))
		fmt.Fprintf(&b, "Candidate #%d (Match: %.1f%%)\n", i+1, index.SimilarityPercent(r.Distance))
		fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 60))
		fmt.Fprintf(&b, "CV ID: %s\n", r.Meta.CVID)
		name := r.Meta.CandidateName
		if name == "" {
			name = "Unknown"
		}
		fmt.Fprintf(&b, "Name: %s\n", name)
		fmt.Fprintf(&b, "Filename: %s\n", r.Meta.Filename)
		fmt.Fprintf(&b, "\nProfile:\n%s\n\n", r.Content)
	}
	return b.String(), nil
}

// SearchDetails searches raw CV chunks. When cvID is set the search is scoped
// to that CV; otherwise it spans all chunk documents. Results are grouped by
// source CV to avoid fragment repetition.
func (t *Toolset) SearchDetails(ctx context.Context, query, cvID string, topK int) (string, error) {
	if topK <= 0 {
		topK = defaultDetailsTopK
	}
	t.logger.Info("searching CV details",
		zap.String("query", query), zap.String("cv_id", cvID), zap.Int("top_k", topK))

	filter := index.Filter{Type: index.TypeChunk}
	if cvID != "" {
		filter = index.Filter{CVID: cvID}
	}

	results, err := t.store.Query(ctx, query, topK, filter)
	if err != nil {
		return "", fmt.Errorf("search details: %w", err)
	}
	if len(results) == 0 {
		if cvID != "" {
			return fmt.Sprintf("No detailed information found in CV %s matching your query.", cvID), nil
		}
		return "No detailed information found matching your query.", nil
	}

	type section struct {
		content    string
		page       int
		similarity float64
	}
	grouped := make(map[string][]section)
	filenames := make(map[string]string)
	var order []string

	for _, r := range results {
		id := r.Meta.CVID
		if _, seen := grouped[id]; !seen {
			order = append(order, id)
			filenames[id] = r.Meta.Filename
		}
		grouped[id] = append(grouped[id], section{
			content:    r.Content,
			page:       r.Meta.Page,
			similarity: index.SimilarityPercent(r.Distance),
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found relevant information in %d CV(s):\n\n", len(order))
	for _, id := range order {
		fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 60))
		fmt.Fprintf(&b, "CV ID: %s - %s\n", id, filenames[id])
		fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 60))
		for i, sec := range grouped[id] {
			fmt.Fprintf(&b, "--- Section %d (Page %d, Match: %.1f%%) ---\n", i+1, sec.page, sec.similarity)
			fmt.Fprintf(&b, "%s\n\n", sec.content)
		}
	}
	return b.String(), nil
}

// ListAll enumerates every CV, newest first. Not a semantic search.
func (t *Toolset) ListAll(ctx context.Context) (string, error) {
	t.logger.Info("listing all CVs")

	cvs, err := t.cvs.ListWithSummaries(ctx)
	if err != nil {
		return "", fmt.Errorf("list CVs: %w", err)
	}
	if len(cvs) == 0 {
		return "No CVs have been uploaded yet.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total CVs in system: %d\n\n", len(cvs))
	for i, cv := range cvs {
		fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 70))
		fmt.Fprintf(&b, "CV #%d\n", i+1)
		fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 70))

		if cv.Summary != nil && cv.Summary.SummaryJSON != "" {
			var summary CVSummary
			if err := json.Unmarshal([]byte(cv.Summary.SummaryJSON), &summary); err == nil {
				summary.Normalize()
				b.WriteString(FormatSummaryText(&summary, cv.Filename))
				b.WriteString("\n\n")
				continue
			}
		}

		fmt.Fprintf(&b, "CV ID: %s\n", cv.ID)
		fmt.Fprintf(&b, "Filename: %s\n", cv.Filename)
		fmt.Fprintf(&b, "Uploaded: %s\n", cv.UploadedAt.Format("2006-01-02 15:04"))
		b.WriteString("Status: Processing or no summary available\n\n")
	}
	return b.String(), nil
}

// declarations describes the tools to the model. Argument schemas here are
// the only contract the model sees; dispatch validates against the same
// shapes.
func (t *Toolset) declarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name: toolSearchSummaries,
			Description: "Search across all CV summaries to compare and rank multiple candidates. " +
				"Use when the user wants to compare candidates, find the best match for a role, " +
				"or asks \"who has the most X\" / \"which candidate is best for Y\".",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {Type: genai.TypeString, Description: "The search query describing what you're looking for"},
					"top_k": {Type: genai.TypeInteger, Description: "Number of CVs to return (default 10)"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name: toolSearchDetails,
			Description: "Search detailed CV content for specific information about projects, " +
				"responsibilities, achievements, education or work history. " +
				"Ideal for deep-dives into one candidate.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {Type: genai.TypeString, Description: "The specific information you need"},
					"cv_id": {Type: genai.TypeString, Description: "Optional - limit search to a specific CV id"},
					"top_k": {Type: genai.TypeInteger, Description: "Number of relevant sections to return (default 5)"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name: toolListAll,
			Description: "List all uploaded CVs with basic information. Use to see what CVs " +
				"are available, count them, or find the CV ID for a candidate.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
		},
	}
}

// dispatch routes a validated tool call to its implementation. Unknown names
// and malformed arguments are errors; the set is closed by design.
func (t *Toolset) dispatch(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case toolSearchSummaries:
		query, err := stringArg(args, "query", true)
		if err != nil {
			return "", err
		}
		return t.SearchSummaries(ctx, query, intArg(args, "top_k"))
	case toolSearchDetails:
		query, err := stringArg(args, "query", true)
		if err != nil {
			return "", err
		}
		cvID, err := stringArg(args, "cv_id", false)
		if err != nil {
			return "", err
		}
		return t.SearchDetails(ctx, query, cvID, intArg(args, "top_k"))
	case toolListAll:
		return t.ListAll(ctx)
	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}

func stringArg(args map[string]any, key string, required bool) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required argument %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	if required && strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("argument %q must not be empty", key)
	}
	return s, nil
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
