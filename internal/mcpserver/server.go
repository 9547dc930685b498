// Package mcpserver exposes the diff core over the Model Context
// Protocol: four tools (parse_diff, apply_patch, summarize_diff,
// format_diff) wrapping the pure functions in internal/diff for any
// MCP-capable collaborator reaching it over stdio, rather than a
// second implementation of the core itself.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/batalabs/diffcore/internal/diff"
	"github.com/batalabs/diffcore/internal/obslog"
)

// New builds an MCP server exposing the diff core's parse, apply,
// summarize and format operations as tools. logger, if non-nil,
// records a request id and outcome for each apply_patch call.
func New(logger *obslog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "diffcore",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_diff",
		Description: "Parse unified diff text into per-file patches, reporting each file's paths and hunk count.",
	}, parseDiffHandler)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "apply_patch",
		Description: "Apply the first file-patch in a unified diff to an original text, with fuzzy-anchoring tolerance for drifted line numbers.",
	}, applyPatchHandler(logger))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_diff",
		Description: "Count additions, deletions and hunks for every file-patch in a unified diff.",
	}, summarizeDiffHandler)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "format_diff",
		Description: "Reconstruct a canonical unified diff string for every file-patch parsed from the input.",
	}, formatDiffHandler)

	return server
}

// ParseDiffInput is the input schema for parse_diff.
type ParseDiffInput struct {
	Patch string `json:"patch" jsonschema:"unified diff text to parse"`
}

// FilePatchSummary describes one parsed file-patch.
type FilePatchSummary struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
	Hunks   int    `json:"hunks"`
}

// ParseDiffOutput is the output schema for parse_diff.
type ParseDiffOutput struct {
	Files []FilePatchSummary `json:"files"`
}

func parseDiffHandler(ctx context.Context, req *mcp.CallToolRequest, in ParseDiffInput) (*mcp.CallToolResult, ParseDiffOutput, error) {
	patches, err := diff.Parse(in.Patch)
	if err != nil {
		return nil, ParseDiffOutput{}, err
	}
	out := ParseDiffOutput{Files: make([]FilePatchSummary, 0, len(patches))}
	for _, fp := range patches {
		out.Files = append(out.Files, FilePatchSummary{
			OldPath: fp.OldPath,
			NewPath: fp.NewPath,
			Hunks:   len(fp.Hunks),
		})
	}
	return nil, out, nil
}

// ApplyPatchInput is the input schema for apply_patch.
type ApplyPatchInput struct {
	Original     string `json:"original" jsonschema:"the original file text"`
	Patch        string `json:"patch" jsonschema:"unified diff text; only the first file-patch is applied"`
	FuzzyContext int    `json:"fuzzy_context,omitempty" jsonschema:"half-width of the local anchoring window, default 5"`
}

// ApplyPatchOutput is the output schema for apply_patch.
type ApplyPatchOutput struct {
	Text                 string `json:"text"`
	AddedLines           []int  `json:"added_lines"`
	RemovedLinesOriginal []int  `json:"removed_lines_original"`
}

func applyPatchHandler(logger *obslog.Logger) func(context.Context, *mcp.CallToolRequest, ApplyPatchInput) (*mcp.CallToolResult, ApplyPatchOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, in ApplyPatchInput) (*mcp.CallToolResult, ApplyPatchOutput, error) {
		requestID := uuid.NewString()

		patches, err := diff.Parse(in.Patch)
		if err != nil {
			logger.Debugf("apply_patch[%s] parse failed: %v", requestID, err)
			return nil, ApplyPatchOutput{}, err
		}
		if len(patches) == 0 {
			return nil, ApplyPatchOutput{}, fmt.Errorf("apply_patch[%s]: no file patches found", requestID)
		}

		opts := diff.DefaultApplyOptions()
		if in.FuzzyContext > 0 {
			opts.FuzzyContext = in.FuzzyContext
		}
		opts.Logger = logger

		result, err := diff.Apply(in.Original, patches[0], opts)
		if err != nil {
			logger.Debugf("apply_patch[%s] apply failed: %v", requestID, err)
			return nil, ApplyPatchOutput{}, err
		}

		logger.Debugf("apply_patch[%s] applied %d hunk(s)", requestID, len(patches[0].Hunks))
		return nil, ApplyPatchOutput{
			Text:                 result.Text,
			AddedLines:           result.AddedLines,
			RemovedLinesOriginal: result.RemovedLinesOriginal,
		}, nil
	}
}

// SummarizeDiffInput is the input schema for summarize_diff.
type SummarizeDiffInput struct {
	Patch string `json:"patch" jsonschema:"unified diff text to summarize"`
}

// FilePatchCounts reports Summarize's output for one file-patch.
type FilePatchCounts struct {
	OldPath   string `json:"old_path"`
	NewPath   string `json:"new_path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Hunks     int    `json:"hunks"`
}

// SummarizeDiffOutput is the output schema for summarize_diff.
type SummarizeDiffOutput struct {
	Files []FilePatchCounts `json:"files"`
}

func summarizeDiffHandler(ctx context.Context, req *mcp.CallToolRequest, in SummarizeDiffInput) (*mcp.CallToolResult, SummarizeDiffOutput, error) {
	patches, err := diff.Parse(in.Patch)
	if err != nil {
		return nil, SummarizeDiffOutput{}, err
	}
	out := SummarizeDiffOutput{Files: make([]FilePatchCounts, 0, len(patches))}
	for _, fp := range patches {
		additions, deletions, hunks := diff.Summarize(fp)
		out.Files = append(out.Files, FilePatchCounts{
			OldPath: fp.OldPath, NewPath: fp.NewPath,
			Additions: additions, Deletions: deletions, Hunks: hunks,
		})
	}
	return nil, out, nil
}

// FormatDiffInput is the input schema for format_diff.
type FormatDiffInput struct {
	Patch string `json:"patch" jsonschema:"unified diff text to reformat canonically"`
}

// FormatDiffOutput is the output schema for format_diff.
type FormatDiffOutput struct {
	Files []string `json:"files"`
}

func formatDiffHandler(ctx context.Context, req *mcp.CallToolRequest, in FormatDiffInput) (*mcp.CallToolResult, FormatDiffOutput, error) {
	patches, err := diff.Parse(in.Patch)
	if err != nil {
		return nil, FormatDiffOutput{}, err
	}
	out := FormatDiffOutput{Files: make([]string, 0, len(patches))}
	for _, fp := range patches {
		out.Files = append(out.Files, diff.FormatFileDiff(fp))
	}
	return nil, out, nil
}
