package prompts

import "embed"

//go:embed *.md *.yaml
var PromptsFS embed.FS
