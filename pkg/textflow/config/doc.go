/*
Package config loads textflow settings.

# Layering

Settings are built from three layers, later layers winning:

 1. Built-in defaults (Defaults)
 2. An optional YAML or JSON file
 3. Environment variables, with a .env file filling in variables the
    process environment does not set

	s, err := config.Load("textflow.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	p := textflow.NewPipeline(client)
	res := p.Extract(ctx, text, s.HasCredential())

# Environment

	DEEPSEEK_API_KEY         service credential
	TEXTFLOW_BACKEND         openai | command
	TEXTFLOW_MODEL           model name
	TEXTFLOW_BASE_URL        OpenAI-compatible endpoint
	TEXTFLOW_LOG_LEVEL       debug | info | warn | error
	TEXTFLOW_ADDR            HTTP listen address
	TEXTFLOW_CANVAS_DRIVER   canvas driver name
	TEXTFLOW_CANVAS_DSN      canvas driver DSN

# File access

Config wraps a decoded map[string]any and returns defaults for missing
keys or mismatched types instead of failing. Dotted keys reach into
nested sections:

	cfg, _ := config.FromFile("textflow.yaml")
	timeout := cfg.Duration("llm.timeout", time.Minute)
*/
package config
