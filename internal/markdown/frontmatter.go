package markdown

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

type frontMatter struct {
	Title string `yaml:"title"`
}

// splitFrontMatter separates a leading "---" delimited YAML block from the
// Markdown body. Sources without one are returned unchanged.
// Blocks that are not valid YAML mappings are left in the body.
func splitFrontMatter(src []byte) (frontMatter, []byte) {
	var fm frontMatter
	src = bytes.TrimPrefix(src, []byte("\ufeff"))
	if !bytes.HasPrefix(src, []byte("---\n")) && !bytes.HasPrefix(src, []byte("---\r\n")) {
		return fm, src
	}

	rest := src[bytes.IndexByte(src, '\n')+1:]
	for off := 0; off < len(rest); {
		end := bytes.IndexByte(rest[off:], '\n')
		var line []byte
		if end < 0 {
			line = rest[off:]
			end = len(rest) - off
		} else {
			line = rest[off : off+end]
		}
		if string(bytes.TrimRight(line, "\r")) == "---" {
			if err := yaml.Unmarshal(rest[:off], &fm); err != nil {
				return frontMatter{}, src
			}
			return fm, rest[min(off+end+1, len(rest)):]
		}
		off += end + 1
	}
	// No closing delimiter: treat the dashes as a thematic break.
	return fm, src
}
