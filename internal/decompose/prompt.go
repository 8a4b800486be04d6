package decompose

import "fmt"

// decompositionPrompt asks the model to break a request into subtasks.
// The response must be a bare JSON array of strings; anything else goes
// through the fallback path in the actor.
const decompositionPrompt = `Based on the following task, generate a list of 3-5 specific, actionable subtasks. Return ONLY a JSON array of strings, no other text or formatting.

Task: %s`

// completionPrompt asks the model to execute one subtask.
const completionPrompt = `Complete this specific subtask thoroughly and provide detailed results:

Subtask: %s`

// DecompositionPrompt returns the instruction for the decomposition call.
func DecompositionPrompt(request string) string {
	return fmt.Sprintf(decompositionPrompt, request)
}

// CompletionPrompt returns the instruction for a single subtask's
// completion call.
func CompletionPrompt(description string) string {
	return fmt.Sprintf(completionPrompt, description)
}
