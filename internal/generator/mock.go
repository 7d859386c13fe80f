package generator

import (
	"context"
	"strings"
)

// MockClient serves canned JSON for local development. It picks a
// response shape by inspecting the prompt, so every generator method
// works without an API key.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, req GenerateRequest) (*LLMResponse, error) {
	content := mockStructuredPolicy
	prompt := strings.ToLower(req.Prompt)
	switch {
	case strings.Contains(prompt, "definition puzzle"):
		content = mockDefinitionPuzzles
	case strings.Contains(prompt, "exception puzzle"):
		content = mockExceptionPuzzles
	case strings.Contains(prompt, "rule vault"):
		content = mockRulePuzzles
	case strings.Contains(prompt, "violation repair"):
		content = mockViolationPuzzles
	case strings.Contains(prompt, "master puzzle"):
		content = mockMasterPuzzle
	case strings.Contains(prompt, "falling"):
		content = mockFallingBallQuestions
	case strings.Contains(prompt, "compliant action"):
		content = mockScenario
	case strings.Contains(prompt, "violation of the rule"):
		content = mockViolationScenario
	case strings.Contains(prompt, "contradictions"):
		content = mockDraftAnalysis
	}

	return &LLMResponse{
		Content:      content,
		PromptTokens: 800,
		OutputTokens: 1200,
	}, nil
}

const mockStructuredPolicy = `{
	"title": "[Mock] Remote Work Policy",
	"summary": "[Mock] Rules governing remote work arrangements and data handling.",
	"rules": ["Employees must use the company VPN when accessing internal systems remotely.", "Work devices must be locked when unattended.", "Confidential documents may not be printed at home."],
	"roles": ["Employee", "Manager", "IT Security"],
	"clauses": ["Section 2.1: VPN usage", "Section 3.4: Device security"],
	"definitions": ["Remote work: performing job duties from a location other than a company office.", "Confidential information: data classified as internal-only or above."],
	"exceptions": ["Employees travelling internationally may use approved hotel networks with IT sign-off."],
	"risks": ["Data exfiltration over unsecured networks."],
	"policy_sections": ["Scope", "Device Security", "Network Access"]
}`

const mockDefinitionPuzzles = `{"puzzles": [
	{"term": "[Mock] Remote work", "definition": "Performing job duties away from a company office.", "wrong_definitions": ["Working overtime hours.", "Any work done on a laptop.", "Work performed by contractors."]},
	{"term": "[Mock] Confidential information", "definition": "Data classified as internal-only or above.", "wrong_definitions": ["Any email sent to a colleague.", "Publicly released documents.", "Personal notes."]},
	{"term": "[Mock] VPN", "definition": "An encrypted tunnel to the company network.", "wrong_definitions": ["A public wifi hotspot.", "A password manager.", "A videoconferencing tool."]}
]}`

const mockExceptionPuzzles = `{"puzzles": [
	{"scenario": "[Mock] An employee on a business trip uses the hotel network after IT approval.", "exception": "Approved hotel networks with IT sign-off are permitted while travelling.", "wrong_exceptions": ["Any network is fine while travelling.", "Managers are exempt from network rules.", "Short sessions do not require a VPN."]},
	{"scenario": "[Mock] A manager works from a cafe using the company VPN.", "exception": "VPN use satisfies the remote access requirement regardless of location.", "wrong_exceptions": ["Cafes are always prohibited.", "Only offices allow internal access.", "Managers need written approval for cafes."]}
]}`

const mockRulePuzzles = `{"puzzles": [
	{"situation": "[Mock] An employee opens the internal wiki from home wifi.", "rule": "Employees must use the company VPN when accessing internal systems remotely.", "wrong_rules": ["Work devices must be locked when unattended.", "Confidential documents may not be printed at home.", "Passwords must rotate quarterly."]},
	{"situation": "[Mock] An employee leaves a laptop open at a coworking space.", "rule": "Work devices must be locked when unattended.", "wrong_rules": ["Employees must use the company VPN when accessing internal systems remotely.", "Confidential documents may not be printed at home.", "Visitors must be escorted."]},
	{"situation": "[Mock] An employee prints a contract on a home printer.", "rule": "Confidential documents may not be printed at home.", "wrong_rules": ["Work devices must be locked when unattended.", "Employees must use the company VPN when accessing internal systems remotely.", "Badges must be worn on site."]}
]}`

const mockViolationPuzzles = `{"puzzles": [
	{"scenario": "[Mock] An employee wants to keep working on a report during a train ride.", "violation": "They email a client list to a personal account to work on it later.", "fix": "Access the client list through the VPN on a work device instead.", "explanation": "Internal data must stay on work devices reached over the company VPN."},
	{"scenario": "[Mock] An employee steps away to order coffee.", "violation": "A laptop with an active session is left unlocked in the cafe.", "fix": "Lock the device before stepping away.", "explanation": "Work devices must be locked whenever they are unattended."}
]}`

const mockMasterPuzzle = `{
	"scenario": "[Mock] A new hire spends their first remote week handling confidential material.",
	"definition_question": {"term": "Remote work", "definition": "Performing job duties away from a company office.", "wrong_definitions": ["Working overtime hours.", "Any work done on a laptop.", "Work performed by contractors."]},
	"rule_question": {"situation": "The new hire opens the internal wiki from home.", "rule": "Employees must use the company VPN when accessing internal systems remotely.", "wrong_rules": ["Work devices must be locked when unattended.", "Confidential documents may not be printed at home.", "Badges must be worn on site."]},
	"exception_question": {"scenario": "The new hire travels and needs the hotel network.", "exception": "Approved hotel networks with IT sign-off are permitted while travelling.", "wrong_exceptions": ["Any network is fine while travelling.", "Managers are exempt from network rules.", "Short sessions do not require a VPN."]},
	"violation_question": {"scenario": "The new hire needs a hard copy of a contract.", "violation": "They print the confidential contract at home.", "fix": "Use an office printer or view the document digitally.", "explanation": "Confidential documents may not be printed outside company offices."}
}`

const mockFallingBallQuestions = `{"questions": [
	{"question": "[Mock] What must remote access go through?", "correct": "The company VPN", "wrong_options": ["Any public wifi", "A personal hotspot", "The guest network"]},
	{"question": "[Mock] What must happen to unattended devices?", "correct": "They must be locked", "wrong_options": ["Nothing", "They must be powered off", "They must be handed to a manager"]},
	{"question": "[Mock] Where may confidential documents be printed?", "correct": "Only at company offices", "wrong_options": ["At home", "At any print shop", "Anywhere with permission"]}
]}`

const mockScenario = `{
	"scenario": "[Mock] You are working from home and need a report from the internal file share.",
	"options": ["Connect to the VPN before opening the share", "Ask a colleague to email it to your personal address", "Use the neighbour's open wifi", "Copy it to a USB stick at the office beforehand"],
	"correct": 0,
	"explanation": "[Mock] The policy requires the company VPN for any remote access to internal systems, so connecting first is the compliant action.",
	"policy_rule_used": "Employees must use the company VPN when accessing internal systems remotely."
}`

const mockViolationScenario = `{
	"narrative": "[Mock] Dana settled in at the airport gate, opened the internal dashboard over the free airport wifi without the VPN, and started triaging tickets before boarding.",
	"violation_text": "opened the internal dashboard over the free airport wifi without the VPN",
	"violation_start": 0,
	"violation_end": 0,
	"explanation": "[Mock] Internal systems were accessed remotely without the company VPN, which the policy requires.",
	"policy_rule_used": "Employees must use the company VPN when accessing internal systems remotely."
}`

const mockDraftAnalysis = `{
	"contradictions": ["[Mock] Section 2 requires VPN for all remote access, but Section 5 permits webmail without it."],
	"ambiguities": ["[Mock] 'Unattended' is not defined for shared home offices."],
	"overlaps": ["[Mock] Device locking appears in both Device Security and Clean Desk sections."],
	"suggestions": ["[Mock] Define 'unattended' with a time threshold."]
}`
