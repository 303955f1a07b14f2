package blazorpack

import "fmt"

// SplitFrames splits a batch into frame payloads, in order. Each payload
// aliases raw. Any framing error fails the whole batch.
func SplitFrames(raw []byte, maxFrameSize int) ([][]byte, error) {
	var frames [][]byte
	for off := 0; off < len(raw); {
		n, k, err := DecodeUvarint(raw[off:])
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", off, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("offset %d: %w: empty frame", off, ErrIncompleteMessage)
		}
		if uint64(n) > uint64(maxFrameSize) {
			return nil, fmt.Errorf("offset %d: %w: %d bytes", off, ErrFrameTooLarge, n)
		}
		start := off + k
		if uint64(n) > uint64(len(raw)-start) {
			return nil, fmt.Errorf("offset %d: %w: declared %d bytes, %d remain",
				off, ErrIncompleteMessage, n, len(raw)-start)
		}
		end := start + int(n)
		frames = append(frames, raw[start:end:end])
		off = end
	}
	return frames, nil
}

// FrameLengths returns the declared payload length of each frame in a batch.
func FrameLengths(raw []byte) ([]int, error) {
	frames, err := SplitFrames(raw, HardMaxFrameSize)
	if err != nil {
		return nil, err
	}
	lens := make([]int, len(frames))
	for i, f := range frames {
		lens[i] = len(f)
	}
	return lens, nil
}
