// Package media extracts playback metadata from raw audio payloads.
package media

import (
	"bytes"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/tcolgate/mp3"
)

// Duration decodes an MP3 payload frame by frame and returns the total
// playback time.
func Duration(data []byte) (time.Duration, error) {
	var (
		decoder = mp3.NewDecoder(bytes.NewReader(data))
		frame   mp3.Frame
		skipped int
		total   time.Duration
	)

	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			if err == io.EOF {
				break
			}
			return 0, errors.Wrap(err, "failed to decode mp3 frame")
		}

		total += frame.Duration()
	}

	return total, nil
}
