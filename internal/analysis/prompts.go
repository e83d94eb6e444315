package analysis

import "fmt"

const postureFactors = "'Network Security', 'DNS Health', 'Patching Cadence', 'Endpoint Security', 'IP Reputation', 'Application Security', 'Cubit Score', 'Privacy', 'Email Security (SPF, DKIM, DMARC)', 'SSL/TLS Configuration'"

const threatFactors = "'Hacker Chatter', 'Information Leak', 'Social Engineering', 'Known Breach'"

// Factor names carrying the critical-finding override at scoring time.
const (
	factorKnownBreach     = "Known Breach"
	factorInformationLeak = "Information Leak"
)

const responseSchema = `{
  "vendorName": "string",
  "securityPostureScore": "number (0-100)",
  "threatExposureScore": "number (0-100)",
  "summary": "string",
  "riskFactors": [
    { "name": "string", "score": "number (0-100)", "summary": "string", "references": ["string"] }
  ],
  "compliance": {
    "privacyPolicyUrl": "string (URL or 'Not Found')",
    "dpaUrl": "string (URL or 'Not Found')",
    "certifications": ["string"],
    "laws": ["string"]
  },
  "recommendations": ["string"]
}`

func fullScanPrompt(domain string) string {
	return fmt.Sprintf(`Act as a world-class cybersecurity threat intelligence analyst. Provide a comprehensive threat intelligence report for the vendor with the domain: %q.

Provide a detailed analysis for each of the following risk factors. For each factor you must provide:
1. A numerical score from 0 to 100, where 100 is the best possible score (lowest risk) and 0 is the worst (highest risk). For the "Known Breach" factor, differentiate between recent (last 18 months) and historical breaches. A recent, unmitigated breach should score below 20. A historical breach from 5+ years ago that has been addressed should score 60-80.
2. A concise summary (1-2 sentences) explaining the reasoning behind the score.
3. A list of key findings or source descriptions (as strings) supporting the analysis for that factor.

The risk factors to analyze are: %s, %s.

Additionally, provide the following compliance and legal information:
- Privacy Policy URL: the direct link to the vendor's privacy policy, or 'Not Found'.
- DPA URL: the direct link to their Data Processing Agreement if publicly available, or 'Not Found'.
- Certifications: any published security or privacy certifications (e.g. "SOC 2 Type II", "ISO 27001").
- Laws: major data privacy laws the company is known to comply with (e.g. "GDPR", "CCPA").

Finally, provide 3-5 actionable 'recommendations' for a security team.

After analyzing all individual factors, calculate and provide TWO top-level scores:
1. 'securityPostureScore': the average of all Security Posture factors: %s.
2. 'threatExposureScore': the average of all Threat Exposure factors: %s.

Provide an overall summary discussing both the security posture and the threat exposure.

IMPORTANT: Your final output MUST be a single, valid JSON object. Do NOT include 'overallScore'. The JSON object must conform to this structure:
%s`, domain, postureFactors, threatFactors, postureFactors, threatFactors, responseSchema)
}

func quickScanPrompt(domain string) string {
	return fmt.Sprintf(`Act as a cybersecurity threat intelligence analyst performing a quick, high-level assessment for the domain: %q.

Provide a brief analysis for ONLY the following critical risk factors:
- Known Breach (historical and recent data breaches; differentiate recent breaches (last 18 months) from old ones)
- SSL/TLS Configuration (certificate validity and security practices)
- IP Reputation (association with malicious activities)
- Hacker Chatter (mentions on dark web or hacker forums)
- Information Leak (credential leaks or sensitive data exposure)

For each factor provide: a numerical score from 0-100 (100 = best), a 1-sentence summary, and a list of key findings (as strings).

After analyzing the factors, calculate and provide TWO top-level scores:
1. 'securityPostureScore': average of 'SSL/TLS Configuration' and 'IP Reputation'.
2. 'threatExposureScore': average of 'Known Breach', 'Hacker Chatter', 'Information Leak'.

Provide 2-3 actionable 'recommendations' and an overall summary.

IMPORTANT: Your final output MUST be a single, valid JSON object. Do NOT include 'overallScore'. It must conform to this structure:
{
  "vendorName": "string",
  "securityPostureScore": "number (0-100)",
  "threatExposureScore": "number (0-100)",
  "summary": "string",
  "riskFactors": [
    { "name": "string", "score": "number", "summary": "string", "references": ["string"] }
  ],
  "recommendations": ["string"]
}`, domain)
}

func contractPrompt(contractText string) string {
	return fmt.Sprintf(`Act as a legal expert specializing in cybersecurity and data privacy law, reviewing a vendor contract or Master Service Agreement for a customer.

Analyze the following contract text and identify its strengths and weaknesses from the CUSTOMER'S perspective. Focus exclusively on clauses related to cybersecurity, data privacy, liability, and incident response.

Key areas to scrutinize:
- Data protection and security obligations: does the vendor commit to specific security standards (encryption, access controls, industry best practices)?
- Incident notification: what is the vendor's obligation to notify the customer of a security breach? Look for specific timelines; vague language is a weakness.
- Liability and indemnification: who is financially responsible for a breach? A low liability cap for the vendor is a major weakness for the customer.
- Right to audit: can the customer audit the vendor's security practices or review third-party audit reports (like SOC 2)?
- Data ownership and return/destruction: does the contract state the customer owns their data and outline secure return or destruction on termination?
- Compliance with laws: does the vendor commit to relevant data privacy laws (e.g. GDPR, CCPA)?

Contract text to analyze:
---
%s
---

IMPORTANT: Your final output MUST be a single, valid JSON object and nothing else. Do not wrap it in markdown. It must have exactly three keys:
{
  "strengths": ["string (a specific clause or commitment favorable to the customer)"],
  "weaknesses": ["string (a missing clause, vague statement, or unfavorable term)"],
  "overallAssessment": "string (one paragraph concluding whether protection is Strong, Moderate, or Weak)"
}`, contractText)
}
