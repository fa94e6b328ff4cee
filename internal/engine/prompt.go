package engine

// LLM prompt and document templates. Data only.

// summaryPrompt asks for a structured summary of a video transcript.
// Args: transcript (already capped at MaxTranscriptChars).
const summaryPrompt = `Please provide a summary of this YouTube video transcript.
Focus on the main points, key insights, and actionable takeaways.

Transcript:
%s

Please format your response as a clear, well-structured summary.`

// markdownTemplate is the saved document layout.
// Args: video URL, summary, model name, transcript.
const markdownTemplate = `# YouTube Video Summary

**Video URL:** %s

## Summary

%s

*Generated using: %s*

## Full Transcript

%s
`

// unnamedModel replaces an empty model name in the attribution line.
const unnamedModel = "AI model"
