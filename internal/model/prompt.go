package model

// PromptTemplate is a named prompt body with placeholders substituted by
// internal/prompt at render time: {owner} {repo} {name} {description}
// {content} {files}.
type PromptTemplate struct {
	ID        string `json:"id"`
	Version   string `json:"version"`
	Template  string `json:"template"`
	IsDefault bool   `json:"is_default"`
}
