package query

// GeneratorPrompt prefixes prompt with the current source when one exists.
func GeneratorPrompt(source, prompt string) string {
	if source != "" {
		return "Here is my current code:\n" + source + "\n\nMake changes to the PlantUML code according to the following prompt:\n" + prompt
	}
	return "Generate PlantUML code according to the following prompt:\n" + prompt
}

func ExaminerPrompt(source, question string) string {
	return "Here is my current code:\n" + source + "\n\nAnswer this question based on the code:\n" + question
}
