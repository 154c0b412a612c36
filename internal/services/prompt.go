package services

import "fmt"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildMatchPrompt creates the job matching prompt. The context block holds the
// retrieved postings, each prefixed with its JOB_ID / JOB_TITLE / JOB_URL
// header lines; the identifier rules below only work because of that prefix.
func (pb *PromptBuilder) BuildMatchPrompt(cvProfile, context string) string {
	return fmt.Sprintf(`You are a job matching assistant. Your task is to match CV skills, aspirations, experience, and education with job postings.
Use the provided context (job postings) to identify the top 5 most relevant jobs.
Assign weights: 50%% for skills, 30%% for experience, 10%% for aspirations, 10%% for education.
For matched_skills, ONLY include skills explicitly mentioned in the job's candidate_requirements, job_description, or skills list. Do NOT include skills from the CV that are not explicitly required or mentioned in the job context.
Match experience by comparing CV experience with job description and experience required. Match aspirations with job title or description. Match education with education required.
Provide suggestions to improve skills or gain experience relevant to the matched jobs, focusing on skills present in the CV but not matched.
Return a JSON object with the following structure:
{
  "matched_jobs": [{
      "job_id": int,
      "job_title": str,
      "job_url": str,
      "match_score": float,
      "matched_skills": [str],
      "matched_aspirations": [str],
      "matched_experience": [str],
      "matched_education": [str],
      "why_match": str (explain why this job matches the CV, focusing on matched skills, experience, and career goals. Be specific and concise, max 100 words)
  }],
  "suggestions": [{"skill_or_experience": str, "suggestion": str}]
}
Ensure the response is concise, accurate, and based only on the provided context.
Do not include any placeholder or sample data, mock examples — only use the actual context data.
IMPORTANT:
- The 'job_id' MUST be taken from the 'JOB_ID:' line in the context text (not invented).
- If a job in the context has a 'JOB_ID' that is not a number, skip it.
- Only pick jobs that appear in the provided context.

Context (job postings):
%s

Match jobs for CV with input: %s`, context, cvProfile)
}

// BuildExtractionPrompt creates the resume parsing prompt. Output must follow
// the CVInfo schema exactly; date and company rules mirror the normalization
// applied after parsing.
func (pb *PromptBuilder) BuildExtractionPrompt(cvText string) string {
	return fmt.Sprintf(`Extract key resume information from the following CV text.
Return JSON with this exact schema:
{
  "name": "",
  "email": "",
  "phone": "",
  "career_objective": "",
  "skills": [],
  "education": [
    {
      "school": "",
      "degree": "",
      "major": "",
      "start_date": "YYYY-MM-DD",
      "end_date": "YYYY-MM-DD"
    }
  ],
  "experience": [
    {
      "company": "non-empty string",
      "title": "",
      "start_date": "YYYY-MM-DD or Present",
      "end_date": "YYYY-MM-DD or Present",
      "description": ""
    }
  ]
}

IMPORTANT RULES:
- PRESERVE THE ORIGINAL LANGUAGE of all text fields (name, company, title, description, skills, etc.)
- DO NOT translate between languages
- Dates must be in YYYY-MM-DD format (e.g., '2022-01-01') or 'Present' for ongoing experiences
- The 'company' field must be a non-empty string (use 'Unknown' if not provided)

CV Text:
"""%s"""`, cvText)
}

// BuildInsightsPrompt asks the model to grade a parsed resume. The score
// ranges stated here are re-enforced by clamping after the parse.
func (pb *PromptBuilder) BuildInsightsPrompt(name, email, phone, skills, objective string, experienceCount, educationCount int) string {
	return fmt.Sprintf(`You are a CV analysis expert. Analyze the following CV and give a detailed assessment:

**CV INFORMATION:**
- Name: %s
- Email: %s
- Phone: %s
- Skills: %s
- Career objective: %s
- Experience: %d positions
- Education: %d degrees

**ANALYSIS REQUIREMENTS:**

1. **Quality Score (0-10):** Overall CV quality
2. **Completeness Score (0-1):** How complete the CV is
   - Formula: (sections present / sections needed)
   - Required sections: Name, Email, Phone, Skills, Career Objective, Experience, Education
   - Bonus sections: Portfolio, Certifications, Projects, Awards
   - This score is NEVER negative, minimum is 0.0
3. **Strengths:** 3-5 points grounded in the current CV
4. **Weaknesses:** 3-5 points based on what the CV lacks or should improve
5. **Market Fit Score (0-1):** How well the CV fits the current job market

**JSON RESPONSE FORMAT:**
{
  "quality_score": 7.5,
  "completeness_score": 0.7,
  "has_portfolio": false,
  "has_certifications": false,
  "has_projects": false,
  "missing_sections": ["Portfolio", "Certifications", "Projects"],
  "market_fit_score": 0.65,
  "experience_level": "Junior",
  "salary_range": "8-12 million VND",
  "competitive_score": 6.8,
  "strengths": ["..."],
  "weaknesses": ["..."]
}

IMPORTANT:
- completeness_score MUST be between 0.0 and 1.0, NEVER negative
- strengths and weaknesses must be specific to this CV
- missing_sections only lists sections that are actually absent

Return ONLY the JSON, no extra explanation.`, name, email, phone, skills, objective, experienceCount, educationCount)
}

// BuildImprovementsPrompt asks for concrete per-section resume edits, fed by
// the insights already computed for the same CV.
func (pb *PromptBuilder) BuildImprovementsPrompt(skills, objective, weaknesses, missingSections string, experienceCount, educationCount int, hasPortfolio, hasCertifications, hasProjects bool) string {
	return fmt.Sprintf(`You are a CV consultant. Based on the analysis below, give SPECIFIC improvement suggestions GROUNDED IN THE CURRENT CV:

**CURRENT CV:**
- Skills: %s
- Experience entries: %d
- Education entries: %d
- Career objective: %s
- Detected weaknesses: %s
- Missing sections: %s
- Has portfolio: %t
- Has certifications: %t
- Has projects: %t

**REQUIREMENTS:**
Give 5 SPECIFIC improvement suggestions based on this CV:

1. **Missing skills:** suggest concrete skills to add for the target field
2. **Missing projects:** suggest a Projects section with concrete examples
3. **Vague experience descriptions:** suggest adding metrics and numbers
4. **Vague career objective:** suggest making it concrete
5. **Missing portfolio/certifications:** suggest additions

**JSON FORMAT (array):**
[
  {
    "section": "skills",
    "current": ["Python", "JavaScript"],
    "suggested_add": ["React", "Node.js"],
    "suggestion": "Add React and Node.js to improve your chances for Full-stack Developer roles",
    "reason": "70%% of Full-stack jobs require React; Node.js is in high demand",
    "priority": "high",
    "impact": "+40%% match rate with Full-stack jobs"
  }
]

NOTES:
- Suggestions must be SPECIFIC and based on the current CV
- No generic advice like "improve your CV"
- Every entry needs a clear reason and impact

Return ONLY the JSON array, no extra explanation.`, skills, experienceCount, educationCount, objective,
		weaknesses, missingSections, hasPortfolio, hasCertifications, hasProjects)
}

// BuildDistributionAnalysisPrompt asks the model to interpret one analytics
// chart for the dashboard.
func (pb *PromptBuilder) BuildDistributionAnalysisPrompt(chartTitle, data string) string {
	return fmt.Sprintf(`You are a job market analyst. Analyze the "%s" chart based on the following data:

%s

Provide a short analysis (3-5 sentences): the dominant categories, what they imply about the market, and one piece of actionable advice for a job seeker.
Return ONLY the analysis text, no JSON format needed.`, chartTitle, data)
}
