// Copyright 2026 The Vellum Authors
// SPDX-License-Identifier: Apache-2.0

// Vellum-check audits a Vellum installation. It re-normalizes every
// stored conversation and message and reports the fields the
// normalizer had to repair or drop, scans the configured vault, checks
// the snapshot cache against the live listing, and resolves every note
// reference found in message content, printing fuzzy suggestions for
// the ones that do not resolve.
//
// Findings go to stdout, one per line, followed by a summary.
// Progress and warnings go to stderr as log records.
//
// Exit codes:
//
//	0  no findings
//	1  findings were reported
//	2  error (bad configuration, unreadable store or vault)
//
// Configuration comes from --config or the VELLUM_CONFIG environment
// variable, with the desktop shell's settings.json overlaid when the
// config names one.
package main
