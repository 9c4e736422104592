// internal/workers/intelligence/gather-intelligence/models.go
package gatherintelligence

import "intel-agent/internal/intel/contact"

type Input struct {
	Command string `json:"command"`
	Format  string `json:"format,omitempty"`
}

type Output struct {
	RunID       string       `json:"runId"`
	Intent      string       `json:"intent"`
	Target      string       `json:"target"`
	Report      string       `json:"report"`
	ContactInfo contact.Info `json:"contactInfo"`
}
