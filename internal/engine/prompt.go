package engine

// LLM prompt templates: data only, no logic.

// summarySystem is the system message sent with every summary call.
const summarySystem = `You summarize YouTube video transcripts clearly and faithfully.
Never invent facts that are not in the transcript. Answer in the language of the transcript.`

// kindInstructions describe each summary style. Shared by the single-chunk,
// partial and reduce templates.
var kindInstructions = map[Kind]string{
	KindConcise: `Write a concise summary in 2-4 sentences.
Capture the main topic and the single most important takeaway. Plain prose, no lists, no headings.`,
	KindDetailed: `Write a detailed summary of several paragraphs.
Follow the order in which topics appear in the video. Keep names, numbers, examples and conclusions.
Use plain prose; short markdown headings are allowed when the video has clearly separate parts.`,
	KindKeyPoints: `List the key points as a markdown bullet list ("- " per line), 5-12 bullets.
Each bullet is one complete, specific sentence. No introduction or closing remarks.`,
}

// summaryPrompt embeds the whole transcript.
// Args: kind instruction, transcript.
const summaryPrompt = `%s

Transcript:
%s`

// partialPrompt summarizes one part of a long transcript.
// Args: part number, part count, kind instruction, chunk text.
const partialPrompt = `The following is part %d of %d of a long video transcript.
Summarize this part only, keeping every fact needed for the final summary described below.
Final summary style:
%s

Transcript part:
%s`

// reducePrompt merges ordered partial summaries into one.
// Args: kind instruction, numbered partial summaries.
const reducePrompt = `Below are summaries of consecutive parts of one video transcript, in order.
Combine them into a single summary of the whole video. Remove repetition and keep the original order of topics.

%s

Part summaries:
%s`

// titleFromSummaryPrompt / titleFromTranscriptPrompt produce a video title.
// Args: source text.
const titleFromSummaryPrompt = `Based on this video summary, generate a concise, descriptive title (max 100 characters).
Return only the title, no quotes or extra text.

Summary:
%s`

const titleFromTranscriptPrompt = `Based on this video transcript excerpt, generate a concise, descriptive title (max 100 characters).
Return only the title, no quotes or extra text.

Transcript excerpt:
%s`
