// Prbot is an AI pull request reviewer that runs as a CI job.
//
// Each run processes one event. Pull request events review every file whose
// patch changed since the last run and post one comment per file; comment
// events answer the question asked in the triggering comment.
//
// Usage:
//
//	prbot run                   # process EVENT_NAME for PR_NUMBER
//	prbot run --dry-run         # log comments instead of posting them
//	prbot state show            # print the recorded file digests
//	prbot config show           # print the effective configuration
//	prbot models                # list providers and default models
//
// Configuration comes from .github/prbot.yaml (or PRBOT_CONFIG), then the
// environment, then flags.
package main
