// Package config loads client settings from YAML or JSON files.
//
// A client file sets the defaults every request built from the resulting
// client inherits:
//
//	baseUrl: https://api.example.com
//	timeout: 30s
//	userAgent: fluent/1.0
//	headers:
//	  Accept: application/json
//	debug: false
//
// Basic Usage:
//
//	cfg, err := config.Load("client.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	client := http.NewClient(cfg.ClientOptions()...)
//
// Validation:
//
// Validate checks every field and returns all problems at once as
// ValidationErrors, each naming the offending field:
//
//	if errs, ok := err.(config.ValidationErrors); ok {
//	    for _, e := range errs {
//	        log.Printf("%s: %s", e.Path, e.Message)
//	    }
//	}
package config
