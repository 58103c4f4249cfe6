package research

// Supervise picks the next stage from what the state is still missing. It
// never inspects how a field was produced, only whether it is present, so
// a stage whose field somehow stayed empty simply runs again.
func Supervise(s *PipelineState) Stage {
	switch {
	case s.RawSearch == "":
		return StageSearch
	case len(s.Records) == 0:
		return StageExtract
	case s.Summary == "" || s.Recommendations == "":
		return StageAnalyze
	case len(s.Charts) == 0:
		return StageVisualize
	}
	return StageFinished
}
