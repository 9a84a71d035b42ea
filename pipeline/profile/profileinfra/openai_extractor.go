package profileinfra

import (
	"context"

	"github.com/applyflow/applyflow/internal/ai/profileparser"
	"github.com/applyflow/applyflow/pipeline/profile"
)

// OpenAIExtractor adapts the vision parser to the profile.Extractor port.
type OpenAIExtractor struct {
	parser *profileparser.ProfileParser
}

// NewOpenAIExtractor creates a profile extractor backed by OpenAI vision.
func NewOpenAIExtractor(parser *profileparser.ProfileParser) profile.Extractor {
	return &OpenAIExtractor{parser: parser}
}

func (e *OpenAIExtractor) ExtractProfile(ctx context.Context, pages [][]byte) (*profile.ExtractedData, error) {
	data, err := e.parser.ExtractFromImages(ctx, pages)
	if err != nil {
		return nil, err
	}

	return &profile.ExtractedData{
		Skills:         data.Skills,
		DesiredTitles:  data.DesiredTitles,
		Certifications: data.Certifications,
	}, nil
}
