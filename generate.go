//go:generate gomarkdoc -e -f github -o README.md . --repository.url https://github.com/agentstation/bibmerge --repository.default-branch master --repository.path /

// Package bibmerge reconciles independently collected bibliographies
// describing the same publications into one merged dataset.
package bibmerge
