package videoprompt

// Instruction is sent ahead of the video. It fixes the shape of the answer
// so an automation agent can consume it without further parsing.
const Instruction = `You are an expert at analyzing browser interactions and converting them to clear, detailed instructions.
Analyze this video of someone using a web browser.

Your task is to:
1. Identify the website(s) being visited and the specific actions taken
2. Note any data entry, button clicks, navigation, or form submissions
3. Identify any specific text being searched for or entered
4. Determine the overall goal of the browser session
5. Create a detailed, step-by-step prompt that a browser automation agent could follow to reproduce these actions

Format your response as follows:
` + "```" + `
Task: [One sentence describing the overall goal]

Steps:
1. [Detailed instruction for step 1]
2. [Detailed instruction for step 2]
...

Additional details:
- [Any important information like specific search terms, URLs, or data inputs]
- [Any timing considerations or conditional actions]
` + "```" + `

Focus only on providing this prompt without any additional commentary.
`
