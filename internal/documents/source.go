package documents

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const maxLineSize = 16 << 20

// Load reads documents from path. The file may hold a JSON array of
// documents or one JSON document per line.
func Load(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open documents: %w", err)
	}
	defer f.Close()

	docs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// Read decodes documents from r and validates identifiers. Input order is preserved.
func Read(r io.Reader) ([]Document, error) {
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, ErrEmptySource
	}
	if err != nil {
		return nil, err
	}

	var docs []Document
	if first == '[' {
		if err := json.NewDecoder(br).Decode(&docs); err != nil {
			return nil, fmt.Errorf("decode document array: %w", err)
		}
	} else {
		docs, err = readLines(br)
		if err != nil {
			return nil, err
		}
	}

	if len(docs) == 0 {
		return nil, ErrEmptySource
	}
	if err := validate(docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func readLines(r io.Reader) ([]Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var docs []Document
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		var d Document
		if err := json.Unmarshal(text, &d); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		docs = append(docs, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return docs, nil
}

func validate(docs []Document) error {
	seen := make(map[string]int, len(docs))
	for i, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("%w: document %d", ErrMissingID, i+1)
		}
		if prev, ok := seen[d.ID]; ok {
			return fmt.Errorf("%w: %s (documents %d and %d)", ErrDuplicateID, d.ID, prev+1, i+1)
		}
		seen[d.ID] = i
	}
	return nil
}

func peekNonSpace(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n', 0xEF, 0xBB, 0xBF:
			continue
		}
		if err := r.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
