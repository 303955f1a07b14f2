package blazorpack

import (
	"bytes"
	"encoding/json"
)

// renderIndent is the indentation of rendered messages.
const renderIndent = "   "

// renderSep separates rendered messages.
const renderSep = ",\r\n"

// Render formats messages as a JSON array: one indented object per message,
// separated by ",\r\n". HTML characters are not escaped.
func Render(msgs []Message) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, m := range msgs {
		if i > 0 {
			buf.WriteString(renderSep)
		}
		b, err := renderMessage(m)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func renderMessage(m Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", renderIndent)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
