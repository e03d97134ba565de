package videoprompt

import (
	"strings"

	"google.golang.org/genai"
)

// extractor pulls prompt text out of one response shape. An empty string
// with a nil error means the shape is absent and the next extractor runs.
type extractor func(resp *genai.GenerateContentResponse) (string, *Error)

var extractors = []extractor{
	directText,
	firstPartText,
}

func extractText(resp *genai.GenerateContentResponse) (string, *Error) {
	for _, extract := range extractors {
		text, err := extract(resp)
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
	}
	return "", newError(KindNoResponse, msgNoResponse)
}

func firstContent(resp *genai.GenerateContentResponse) *genai.Content {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	return resp.Candidates[0].Content
}

// directText joins the answer text of the first candidate, skipping thoughts.
func directText(resp *genai.GenerateContentResponse) (string, *Error) {
	content := firstContent(resp)
	if content == nil {
		return "", nil
	}
	var sb strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// firstPartText takes the first part as is. A content with no parts at all
// is an extraction failure rather than a missing response.
func firstPartText(resp *genai.GenerateContentResponse) (string, *Error) {
	content := firstContent(resp)
	if content == nil {
		return "", nil
	}
	if len(content.Parts) == 0 {
		return "", newError(KindExtraction, msgExtraction)
	}
	if content.Parts[0] == nil {
		return "", nil
	}
	return content.Parts[0].Text, nil
}
