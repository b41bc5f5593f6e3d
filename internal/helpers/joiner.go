package helpers

// Joins many strings and byte slices together by measuring the final length
// first and then allocating once. Bundles are built out of one printed file
// after another, so the pieces can be large.
type Joiner struct {
	parts    []joinerPart
	length   int
	lastByte byte
}

type joinerPart struct {
	text  string
	bytes []byte
}

func (j *Joiner) AddString(data string) {
	if len(data) == 0 {
		return
	}
	j.lastByte = data[len(data)-1]
	j.parts = append(j.parts, joinerPart{text: data})
	j.length += len(data)
}

func (j *Joiner) AddBytes(data []byte) {
	if len(data) == 0 {
		return
	}
	j.lastByte = data[len(data)-1]
	j.parts = append(j.parts, joinerPart{bytes: data})
	j.length += len(data)
}

func (j *Joiner) LastByte() byte {
	return j.lastByte
}

func (j *Joiner) Length() int {
	return j.length
}

func (j *Joiner) EnsureNewlineAtEnd() {
	if j.length > 0 && j.lastByte != '\n' {
		j.AddString("\n")
	}
}

func (j *Joiner) Done() []byte {
	if len(j.parts) == 1 && j.parts[0].bytes != nil {
		// No need to allocate if there was only a single byte array written
		return j.parts[0].bytes
	}
	buffer := make([]byte, 0, j.length)
	for _, part := range j.parts {
		if part.bytes != nil {
			buffer = append(buffer, part.bytes...)
		} else {
			buffer = append(buffer, part.text...)
		}
	}
	return buffer
}
