package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"storydoc/internal/parser"
	"storydoc/internal/store"
	"storydoc/internal/validate"
)

type ParseStoryInput struct {
	Source string `json:"source" jsonschema:"story document source text"`
}

type ParseStoryOutput struct {
	Chapters   int `json:"chapters"`
	Groups     int `json:"groups"`
	Nodes      int `json:"nodes"`
	Characters int `json:"characters"`
	Variables  int `json:"variables"`
	Tags       int `json:"tags"`
}

type ValidateStoryInput struct {
	Source string `json:"source" jsonschema:"story document source text"`
}

type ValidateStoryOutput struct {
	Valid  bool          `json:"valid"`
	Issues []IssueOutput `json:"issues"`
}

type IssueOutput struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Entity   string `json:"entity"`
}

type GetStoryInput struct {
	Name string `json:"name" jsonschema:"story name"`
}

type StoryOutput struct {
	Name       string `json:"name"`
	SourceFile string `json:"source_file"`
	Source     string `json:"source"`
	Chapters   int    `json:"chapters"`
	Groups     int    `json:"groups"`
	Nodes      int    `json:"nodes"`
	Characters int    `json:"characters"`
	Valid      bool   `json:"valid"`
}

type ListStoriesInput struct{}

type StorySummaryOutput struct {
	Name       string `json:"name"`
	SourceFile string `json:"source_file"`
	Chapters   int    `json:"chapters"`
	Groups     int    `json:"groups"`
	Nodes      int    `json:"nodes"`
	Characters int    `json:"characters"`
	Valid      bool   `json:"valid"`
}

type ListStoriesOutput struct {
	Stories []StorySummaryOutput `json:"stories"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "parse_story",
		Description: "Parse story document source and return entity counts",
	}, s.handleParseStory)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "validate_story",
		Description: "Parse story document source and check all references",
	}, s.handleValidateStory)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_story",
		Description: "Retrieve an ingested story with its source",
	}, s.handleGetStory)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_stories",
		Description: "List ingested stories",
	}, s.handleListStories)
}

func (s *Server) handleParseStory(ctx context.Context, req *sdk.CallToolRequest, input ParseStoryInput) (*sdk.CallToolResult, ParseStoryOutput, error) {
	if input.Source == "" {
		return nil, ParseStoryOutput{}, fmt.Errorf("source is required")
	}
	st, err := parser.ParseString(input.Source)
	if err != nil {
		return nil, ParseStoryOutput{}, err
	}
	return nil, ParseStoryOutput{
		Chapters:   len(st.Chapters),
		Groups:     len(st.Groups),
		Nodes:      len(st.Nodes),
		Characters: len(st.Characters),
		Variables:  len(st.Variables),
		Tags:       len(st.Tags),
	}, nil
}

func (s *Server) handleValidateStory(ctx context.Context, req *sdk.CallToolRequest, input ValidateStoryInput) (*sdk.CallToolResult, ValidateStoryOutput, error) {
	if input.Source == "" {
		return nil, ValidateStoryOutput{}, fmt.Errorf("source is required")
	}
	st, err := parser.ParseString(input.Source)
	if err != nil {
		return nil, ValidateStoryOutput{}, err
	}

	report := validate.Run(st)
	out := ValidateStoryOutput{Valid: len(report.Errors()) == 0}
	for _, issue := range report.Issues {
		out.Issues = append(out.Issues, IssueOutput{
			Severity: string(issue.Severity),
			Code:     issue.Code,
			Message:  issue.Message,
			Entity:   issue.Entity,
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetStory(ctx context.Context, req *sdk.CallToolRequest, input GetStoryInput) (*sdk.CallToolResult, StoryOutput, error) {
	if input.Name == "" {
		return nil, StoryOutput{}, fmt.Errorf("name is required")
	}
	st, err := s.db.GetStory(ctx, input.Name)
	if err != nil {
		return nil, StoryOutput{}, err
	}
	if st == nil {
		return nil, StoryOutput{}, fmt.Errorf("story not found")
	}
	return nil, StoryOutput{
		Name:       st.Name,
		SourceFile: st.SourceFile,
		Source:     st.Source,
		Chapters:   st.Chapters,
		Groups:     st.Groups,
		Nodes:      st.Nodes,
		Characters: st.Characters,
		Valid:      st.Valid,
	}, nil
}

func (s *Server) handleListStories(ctx context.Context, req *sdk.CallToolRequest, input ListStoriesInput) (*sdk.CallToolResult, ListStoriesOutput, error) {
	items, err := s.db.ListStories(ctx)
	if err != nil {
		return nil, ListStoriesOutput{}, err
	}

	var out ListStoriesOutput
	for _, item := range items {
		out.Stories = append(out.Stories, summaryOutput(item))
	}
	return nil, out, nil
}

func summaryOutput(s store.StorySummary) StorySummaryOutput {
	return StorySummaryOutput{
		Name:       s.Name,
		SourceFile: s.SourceFile,
		Chapters:   s.Chapters,
		Groups:     s.Groups,
		Nodes:      s.Nodes,
		Characters: s.Characters,
		Valid:      s.Valid,
	}
}
