package serialize

import "os"

// DefaultArtifactPath is where `cloxgo build` writes the serialized program
// unless -o is given; the path is relative to the working directory.
// `cloxgo run` and the REPL do not write an artifact.
const DefaultArtifactPath = "VMDataFile.txt"

// WriteFile encodes d and writes it to path.
func WriteFile(path string, d *VMData) error {
	return os.WriteFile(path, Encode(d), 0o644)
}

// ReadFile reads and decodes the artifact at path.
func ReadFile(path string) (*VMData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}
