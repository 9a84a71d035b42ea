// Package profileparser extracts structured candidate attributes from résumé
// images using OpenAI vision. It is the concrete implementation behind the
// pipeline's profile-extraction collaborator port.
package profileparser

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"
)

// ProfileParser handles candidate attribute extraction using OpenAI Vision.
type ProfileParser struct {
	client *openai.Client
}

// NewProfileParser creates a new parser.
func NewProfileParser(apiKey string) *ProfileParser {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &ProfileParser{
		client: &client,
	}
}

// ProfileData is the structured extraction result.
type ProfileData struct {
	Skills         []string     `json:"skills"`
	DesiredTitles  []string     `json:"desired_titles"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	Certifications []string     `json:"certifications,omitempty"`
}

type Experience struct {
	Company   string `json:"company"`
	Title     string `json:"title"`
	StartDate string `json:"start_date"` // YYYY-MM format
	EndDate   string `json:"end_date"`   // YYYY-MM or "Present"
}

type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	Field          string `json:"field"`
	GraduationDate string `json:"graduation_date"` // YYYY-MM format
}

const systemPrompt = `You are a professional resume parser. Extract ALL information from the resume pages and return ONLY valid JSON.`

const userPrompt = `Extract candidate attributes from this resume in the following JSON structure:

{
  "skills": string[] (technical and soft skills, lowercase),
  "desired_titles": string[] (job titles the candidate held or targets, derived from headline and experience),
  "experience": [{
    "company": string,
    "title": string,
    "start_date": string (YYYY-MM format),
    "end_date": string (YYYY-MM or "Present")
  }],
  "education": [{
    "institution": string,
    "degree": string,
    "field": string,
    "graduation_date": string (YYYY-MM format)
  }],
  "certifications": string[] (optional)
}

IMPORTANT:
- Extract ALL visible text accurately
- If a field is not available, omit it or use an empty array
- Maintain chronological order (newest first)
- Return ONLY the JSON, no explanatory text`

// ExtractFromImages extracts attributes from one or more résumé page images.
func (p *ProfileParser) ExtractFromImages(ctx context.Context, pages [][]byte) (*ProfileData, error) {
	if len(pages) == 0 {
		return nil, errors.New("no pages provided")
	}

	contentParts := []openai.ChatCompletionContentPartUnionParam{
		{
			OfText: &openai.ChatCompletionContentPartTextParam{
				Type: constant.Text("text"),
				Text: userPrompt,
			},
		},
	}

	for i, pageData := range pages {
		base64Image := base64.StdEncoding.EncodeToString(pageData)
		dataURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64Image)

		contentParts = append(contentParts, openai.ChatCompletionContentPartUnionParam{
			OfImageURL: &openai.ChatCompletionContentPartImageParam{
				Type: constant.ImageURL("image_url"),
				ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
					URL:    dataURL,
					Detail: "high", // High detail for better OCR
				},
			},
		})

		if i < len(pages)-1 {
			contentParts = append(contentParts, openai.ChatCompletionContentPartUnionParam{
				OfText: &openai.ChatCompletionContentPartTextParam{
					Type: constant.Text("text"),
					Text: fmt.Sprintf("--- Page %d ends, Page %d begins ---", i+1, i+2),
				},
			})
		}
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: contentParts,
				},
			},
		},
	}

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    "gpt-4o",
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		},
		Temperature: openai.Float(0.1), // Low temperature for consistency
		MaxTokens:   openai.Int(4000),
	})

	if err != nil {
		return nil, fmt.Errorf("openai vision api error: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, errors.New("no response from openai")
	}

	content := completion.Choices[0].Message.Content
	var data ProfileData
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}

	return &data, nil
}
