package api

// SolveRequest asks for one stereo pair to be solved. Exactly one of the
// encoded image pair or Synthetic must be set.
type SolveRequest struct {
	// Left and Right are base64-encoded PNG, JPEG, GIF or WebP images.
	Left  string `json:"left,omitempty"`
	Right string `json:"right,omitempty"`

	Synthetic *SyntheticPair `json:"synthetic,omitempty"`

	NumBeliefs int      `json:"num_beliefs,omitempty"`
	Sweeps     *int     `json:"sweeps,omitempty"`
	Sigma      float64  `json:"sigma,omitempty"`
	Floor      *float64 `json:"floor,omitempty"`

	// Scale shrinks both images before matching; 0 or 1 keeps them as sent.
	Scale float64 `json:"scale,omitempty"`
}

// SyntheticPair generates a random-texture pair with a known shift.
type SyntheticPair struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Shift  int   `json:"shift"`
	Seed   int64 `json:"seed"`
}

type SolveResponse struct {
	ID         string  `json:"id"`
	Object     string  `json:"object"`
	CreatedAt  int64   `json:"created_at"`
	Status     string  `json:"status"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	NumBeliefs int     `json:"num_beliefs"`
	Sweeps     int     `json:"sweeps"`
	DurationMS float64 `json:"duration_ms"`
	Labels     [][]int `json:"labels,omitempty"`
}

type DeleteSolveResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}
