// Package inbox watches a drop directory for JSON draft files and turns
// them into scheduled posts. Files are ingested after a short settle delay
// so partially written drops are not read mid-copy. Malformed drafts are
// moved aside to rejected/ with the error logged; accepted drafts are
// removed (or archived under processed/ when keep_processed is set).
package inbox
