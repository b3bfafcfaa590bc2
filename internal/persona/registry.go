package persona

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "agent-orchestrator/internal/common/errors"
	"agent-orchestrator/internal/common/logger"
)

// documentSchema constrains the shape of a persona pack document. Only
// displayName is semantically required; everything else defaults.
const documentSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string"},
		"displayName": {"type": "string", "minLength": 1},
		"goals": {"type": "array", "items": {"type": "string"}},
		"guardrails": {"type": "object"},
		"ragNamespaces": {"type": "array", "items": {"type": "string"}},
		"tools": {"type": "array", "items": {"type": "string"}},
		"ui": {
			"type": "object",
			"properties": {
				"modules": {"type": "array", "items": {"type": "string"}}
			}
		},
		"voice": {
			"type": "object",
			"properties": {
				"tone": {"type": "string"}
			}
		}
	},
	"required": ["displayName"]
}`

// Registry resolves persona ids against a directory of JSON documents. Each
// Load re-reads from disk; callers must not rely on pointer identity between
// two loads of the same persona.
type Registry struct {
	dir    string
	schema *gojsonschema.Schema
	logger logger.Logger
}

func NewRegistry(dir string, log logger.Logger) (*Registry, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		return nil, fmt.Errorf("compile persona schema: %w", err)
	}
	return &Registry{
		dir:    dir,
		schema: schema,
		logger: log.WithFields(map[string]interface{}{"component": "persona-registry"}),
	}, nil
}

// Load resolves a persona id to its document. Resolution is exact filename
// match on {id}.json first, then the first file (in lexical order) whose name
// starts with the id.
func (r *Registry) Load(personaID string) (*Persona, error) {
	if personaID == "" {
		return nil, apperrors.NewPersonaNotFoundError(personaID)
	}

	path := filepath.Join(r.dir, personaID+".json")
	if _, err := os.Stat(path); err != nil {
		fallback, ok := r.prefixMatch(personaID)
		if !ok {
			return nil, apperrors.NewPersonaNotFoundError(personaID)
		}
		path = fallback
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewPersonaNotFoundError(personaID)
	}

	result, err := r.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, apperrors.NewPersonaInvalidError(personaID, err.Error())
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, apperrors.NewPersonaInvalidError(personaID, strings.Join(details, "; "))
	}

	var p Persona
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, apperrors.NewPersonaInvalidError(personaID, err.Error())
	}

	applyPersonaDefaults(&p, personaID)
	return &p, nil
}

// prefixMatch returns the first configuration file whose name starts with the
// id. Lexical order keeps the fallback deterministic.
func (r *Registry) prefixMatch(personaID string) (string, bool) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return "", false
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.HasPrefix(name, personaID) {
			return filepath.Join(r.dir, name), true
		}
	}
	return "", false
}

func applyPersonaDefaults(p *Persona, personaID string) {
	if p.ID == "" {
		p.ID = personaID
	}
	if p.Tools == nil {
		p.Tools = []string{}
	}
	if p.RagNamespaces == nil {
		p.RagNamespaces = []string{}
	}
	if p.Goals == nil {
		p.Goals = []string{}
	}
	if p.Voice.Tone == "" {
		p.Voice.Tone = "neutral"
	}
}
