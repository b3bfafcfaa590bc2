package persona

// Persona is a named configuration constraining assistant behavior: which
// capabilities may run, which retrieval namespaces a search may touch, and
// the voice used for speech synthesis.
type Persona struct {
	ID            string                 `json:"id"`
	DisplayName   string                 `json:"displayName"`
	Goals         []string               `json:"goals"`
	Guardrails    map[string]interface{} `json:"guardrails"`
	RagNamespaces []string               `json:"ragNamespaces"`
	Tools         []string               `json:"tools"`
	UI            UI                     `json:"ui"`
	Voice         Voice                  `json:"voice"`
}

type UI struct {
	Modules []string `json:"modules"`
}

type Voice struct {
	Tone string `json:"tone"`
}

// Allows reports whether the capability name is in the persona's tool set.
func (p *Persona) Allows(tool string) bool {
	for _, t := range p.Tools {
		if t == tool {
			return true
		}
	}
	return false
}
