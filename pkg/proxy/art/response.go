package art

import "encoding/base64"

type ArtResponse struct {
	Image    string   `json:"image"`
	Metadata Metadata `json:"metadata"`
}

type Metadata struct {
	Prompt     string `json:"prompt"`
	Style      string `json:"style"`
	Dimensions string `json:"dimensions"`
	Model      string `json:"model"`
}

// BuildResponse encodes the image and records the request as the client sent
// it, not the enhanced prompt.
func BuildResponse(raw []byte, req ArtRequest, model string) (*ArtResponse, error) {
	if len(raw) == 0 {
		return nil, &EncodingError{Reason: "empty image payload"}
	}

	return &ArtResponse{
		Image: base64.StdEncoding.EncodeToString(raw),
		Metadata: Metadata{
			Prompt:     req.Prompt,
			Style:      string(req.Style),
			Dimensions: req.Dimensions(),
			Model:      model,
		},
	}, nil
}
