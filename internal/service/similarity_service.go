package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/Caracal/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// SimilarityService compares a free-text answer against a corpus of known
// answers and returns the highest similarity in [0,1]. It is the plagiarism
// signal collaborator; the anti-cheat analyzer only applies the threshold.
type SimilarityService interface {
	Compare(ctx context.Context, text string, corpus []string) (float64, error)
}

type geminiSimilarityService struct {
	client   *genai.GenerativeModel
	fallback SimilarityService
}

// NewGeminiSimilarityService compares texts with Gemini when an API key is
// configured and falls back to deterministic lexical similarity otherwise.
func NewGeminiSimilarityService(cfg *config.Config) (SimilarityService, error) {
	fallback := NewLexicalSimilarityService()
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Plagiarism checks will use lexical similarity only.")
		return &geminiSimilarityService{client: nil, fallback: fallback}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-1.5-flash")
	return &geminiSimilarityService{client: model, fallback: fallback}, nil
}

func (s *geminiSimilarityService) Compare(ctx context.Context, text string, corpus []string) (float64, error) {
	if len(corpus) == 0 || strings.TrimSpace(text) == "" {
		return 0, nil
	}
	if s.client == nil {
		return s.fallback.Compare(ctx, text, corpus)
	}

	var prompt strings.Builder
	prompt.WriteString("You compare a candidate's written answer against previously submitted answers and rate how likely it is copied.\n\n")
	prompt.WriteString("Candidate answer:\n---\n")
	prompt.WriteString(text)
	prompt.WriteString("\n---\n\nPreviously submitted answers:\n")
	for i, entry := range corpus {
		prompt.WriteString(fmt.Sprintf("[%d]\n%s\n", i+1, entry))
	}
	prompt.WriteString("\nRespond strictly as:\nSimilarity: [a number from 0.0 to 1.0]\n")

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		log.Warn().Err(err).Msg("Gemini API error during similarity check, falling back to lexical similarity")
		return s.fallback.Compare(ctx, text, corpus)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return 0, fmt.Errorf("gemini returned no content")
	}

	raw := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw += string(txt)
		}
	}
	return parseSimilarity(raw)
}

func parseSimilarity(raw string) (float64, error) {
	const prefix = "Similarity:"
	idx := strings.Index(raw, prefix)
	if idx == -1 {
		return 0, fmt.Errorf("response does not contain 'Similarity:' prefix. Raw: %s", raw)
	}
	rest := strings.TrimSpace(raw[idx+len(prefix):])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, fmt.Errorf("no similarity value after prefix. Raw: %s", raw)
	}
	val, err := strconv.ParseFloat(strings.TrimRight(fields[0], ".,"), 64)
	if err != nil {
		return 0, fmt.Errorf("parse similarity value %q: %w", fields[0], err)
	}
	if val < 0 {
		val = 0
	}
	if val > 1 {
		val = 1
	}
	return val, nil
}

// lexicalSimilarityService is the deterministic default: highest Jaccard
// similarity between the answer's token set and each corpus entry.
type lexicalSimilarityService struct{}

func NewLexicalSimilarityService() SimilarityService {
	return lexicalSimilarityService{}
}

func (lexicalSimilarityService) Compare(_ context.Context, text string, corpus []string) (float64, error) {
	answer := tokenSet(text)
	if len(answer) == 0 {
		return 0, nil
	}
	best := 0.0
	for _, entry := range corpus {
		other := tokenSet(entry)
		if len(other) == 0 {
			continue
		}
		common := 0
		for tok := range answer {
			if other[tok] {
				common++
			}
		}
		union := len(answer) + len(other) - common
		if union == 0 {
			continue
		}
		if sim := float64(common) / float64(union); sim > best {
			best = sim
		}
	}
	return best, nil
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		set[strings.Trim(tok, ".,;:!?\"'()")] = true
	}
	delete(set, "")
	return set
}
