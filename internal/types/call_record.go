package types

// CallRecord represents a finished call for DynamoDB persistence
type CallRecord struct {
	DateKey        string  `json:"dateKey" dynamodbav:"DateKey"` // YYYY-MM-DD (partition key)
	CallID         string  `json:"callId" dynamodbav:"CallID"`   // sort key
	CampaignID     string  `json:"campaignId" dynamodbav:"CampaignID"`
	LeadID         string  `json:"leadId" dynamodbav:"LeadID"`
	CallStatus     string  `json:"callStatus" dynamodbav:"CallStatus"`
	InterestStatus string  `json:"interestStatus" dynamodbav:"InterestStatus"`
	Outcome        string  `json:"outcome" dynamodbav:"Outcome"`
	Summary        string  `json:"summary" dynamodbav:"Summary"`
	FinalPhase     string  `json:"finalPhase" dynamodbav:"FinalPhase"`
	StartTime      string  `json:"startTime" dynamodbav:"StartTime"` // RFC3339
	EndTime        string  `json:"endTime" dynamodbav:"EndTime"`     // RFC3339
	Duration       float64 `json:"duration" dynamodbav:"Duration"`   // seconds
	Transferred    bool    `json:"transferred" dynamodbav:"Transferred"`
	TranscriptLen  int     `json:"transcriptLen" dynamodbav:"TranscriptLen"`
}
