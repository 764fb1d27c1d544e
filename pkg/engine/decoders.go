package engine

import "github.com/go-drift/mediakit/pkg/platform"

// Decoder describes one entry of the engine's decoder-list property.
type Decoder struct {
	Codec       string
	Driver      string
	Description string
}

// Decoders returns the video decoders the engine reports for the given
// player handle. An empty list means the engine build is audio-only.
func (e *Engine) Decoders(handle int64) ([]Decoder, error) {
	result, err := e.GetProperty(handle, "decoder-list")
	if err != nil {
		return nil, err
	}

	entries, ok := result.([]any)
	if !ok {
		return nil, nil
	}

	decoders := make([]Decoder, 0, len(entries))
	for _, entry := range entries {
		m := platform.ParseMap(entry)
		if m == nil {
			continue
		}
		decoders = append(decoders, Decoder{
			Codec:       platform.ParseString(m["codec"]),
			Driver:      platform.ParseString(m["driver"]),
			Description: platform.ParseString(m["description"]),
		})
	}
	return decoders, nil
}

// HasVideoDecoder reports whether the engine has at least one video decoder
// available for the given player handle.
func (e *Engine) HasVideoDecoder(handle int64) (bool, error) {
	decoders, err := e.Decoders(handle)
	if err != nil {
		return false, err
	}
	return len(decoders) > 0, nil
}
