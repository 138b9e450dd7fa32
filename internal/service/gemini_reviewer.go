package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/vaikuntha/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ErrReviewerUnavailable is returned when no GEMINI_API_KEY is configured.
var ErrReviewerUnavailable = errors.New("ai reviewer is not configured")

// ReviewRequest is the context the model gets for one submission.
type ReviewRequest struct {
	AssignmentTitle       string
	AssignmentDescription string
	MaxPoints             float64
	Submission            string
}

// AssignmentReviewer suggests a grade and feedback for a text submission.
type AssignmentReviewer interface {
	Review(ctx context.Context, req ReviewRequest) (feedback string, score float64, err error)
}

type geminiReviewer struct {
	model *genai.GenerativeModel
}

func NewGeminiReviewer(cfg *config.Config) (AssignmentReviewer, error) {
	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. AI assignment review will be unavailable.")
		return &geminiReviewer{}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Gemini.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiReviewer{model: client.GenerativeModel(cfg.Gemini.Model)}, nil
}

func buildReviewPrompt(req ReviewRequest) string {
	var b strings.Builder
	b.WriteString("You are an experienced course instructor grading a learner's assignment.\n\n")
	b.WriteString("Assignment: ")
	b.WriteString(req.AssignmentTitle)
	b.WriteString("\nInstructions:\n---\n")
	b.WriteString(req.AssignmentDescription)
	b.WriteString("\n---\n\nLearner's submission:\n---\n")
	b.WriteString(req.Submission)
	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, `Evaluate how well the submission fulfils the instructions. Point out strengths,
specific mistakes with a short explanation, and concrete suggestions for improvement.

Format your response strictly as:
Score: [a number from 0 to %.1f]
Feedback:
[your feedback]
`, req.MaxPoints)
	return b.String()
}

func (g *geminiReviewer) Review(ctx context.Context, req ReviewRequest) (string, float64, error) {
	if g.model == nil {
		return "", 0, ErrReviewerUnavailable
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(buildReviewPrompt(req)))
	if err != nil {
		log.Error().Err(err).Msg("Gemini API error during assignment review")
		return "", 0, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", 0, fmt.Errorf("gemini returned no content")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return parseReview(text.String(), req.MaxPoints)
}

// parseReview reads the "Score: / Feedback:" reply and clamps the score to [0, max].
func parseReview(raw string, max float64) (string, float64, error) {
	if strings.TrimSpace(raw) == "" {
		return "", 0, fmt.Errorf("gemini returned no text content")
	}
	scoreStr, feedback, err := parseScoreAndFeedback(raw)
	if err != nil {
		log.Warn().Err(err).Str("rawResponse", raw).Msg("Failed to parse score and feedback from Gemini response")
		return "", 0, err
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(scoreStr), 64)
	if err != nil {
		return feedback, 0, fmt.Errorf("could not parse score value (%q) from AI response", scoreStr)
	}
	return strings.TrimSpace(feedback), clamp(score, 0, max), nil
}

func parseScoreAndFeedback(raw string) (scoreStr string, feedback string, err error) {
	const scorePrefix, feedbackPrefix = "Score:", "Feedback:"

	scoreIndex := strings.Index(raw, scorePrefix)
	if scoreIndex == -1 {
		return "", raw, fmt.Errorf("response does not contain %q", scorePrefix)
	}
	feedbackIndex := strings.Index(raw, feedbackPrefix)

	rest := raw[scoreIndex+len(scorePrefix):]
	endOfLine := strings.Index(rest, "\n")
	if endOfLine == -1 {
		scoreStr = strings.TrimSpace(rest)
	} else {
		scoreStr = strings.TrimSpace(rest[:endOfLine])
	}

	switch {
	case feedbackIndex > scoreIndex:
		feedback = strings.TrimSpace(raw[feedbackIndex+len(feedbackPrefix):])
	case endOfLine != -1:
		feedback = strings.TrimSpace(rest[endOfLine+1:])
	default:
		feedback = ""
	}

	// "Score: 7.5/10" -> "7.5"
	if fields := strings.Fields(scoreStr); len(fields) > 0 {
		scoreStr = strings.SplitN(fields[0], "/", 2)[0]
	}
	return scoreStr, feedback, nil
}
