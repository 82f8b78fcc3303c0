package cursoragent

import "bytes"

// Decoder incrementally decodes the agent's NDJSON output stream. Chunks
// arrive at arbitrary boundaries; the decoder buffers the trailing partial
// line between feeds. Lines that fail to parse are dropped: some agent
// configurations interleave plain diagnostic text on stdout and a noisy line
// must never abort decoding of the lines after it.
type Decoder struct {
	buf bytes.Buffer
}

// NewDecoder returns an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends a chunk and returns the typed messages decoded from every
// line completed by it, in stream order.
func (d *Decoder) Feed(chunk []byte) []Message {
	d.buf.Write(chunk)

	data := d.buf.Bytes()
	var msgs []Message
	start := 0
	for {
		i := bytes.IndexByte(data[start:], '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimRight(data[start:start+i], "\r")
		start += i + 1

		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		msg, err := ParseMessage(line)
		if err != nil || msg == nil {
			continue
		}
		msgs = append(msgs, msg)
	}

	rest := data[start:]
	if start > 0 {
		remaining := make([]byte, len(rest))
		copy(remaining, rest)
		d.buf.Reset()
		d.buf.Write(remaining)
	}
	return msgs
}

// Pending returns the buffered partial line awaiting its newline.
func (d *Decoder) Pending() string {
	return d.buf.String()
}
