package model

// DashboardSummary is the admin home page overview.
type DashboardSummary struct {
	ActiveMachines   int            `json:"active_machines"`
	TotalMachines    int            `json:"total_machines"`
	ActiveProducts   int            `json:"active_products"`
	ContactsByStatus map[string]int `json:"contacts_by_status"`
	NewContacts30d   int            `json:"new_contacts_30d"`
	EmailsSent30d    int            `json:"emails_sent_30d"`
	EmailsFailed30d  int            `json:"emails_failed_30d"`
	RecentContacts   []Contact      `json:"recent_contacts"`
}
