package pipeline

// Describe maps a progress value to the phase label and detail line shown
// while a run is in flight. Pure and deterministic; values outside 0-100
// are clamped.
func Describe(progress int) (label, detail string) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	switch {
	case progress < 40:
		return "Uploading", "Preparing file for processing"
	case progress < 70:
		return "Extracting", "Extracting text from your document"
	case progress < 100:
		return "Analyzing", "Analyzing RFP information"
	default:
		return "Finalizing", "Preparing your analysis report"
	}
}
