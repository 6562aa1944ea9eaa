package mail

import "crypto/subtle"

// Notification is one change notification delivered to the webhook.
type Notification struct {
	SubscriptionID string `json:"subscriptionId"`
	ChangeType     string `json:"changeType"`
	Resource       string `json:"resource"`
	ClientState    string `json:"clientState"`
	ResourceData   struct {
		ID string `json:"id"`
	} `json:"resourceData"`
}

type NotificationBatch struct {
	Value []Notification `json:"value"`
}

// MessageID returns the id of the message the notification is about.
func (n Notification) MessageID() string {
	if n.ResourceData.ID != "" {
		return n.ResourceData.ID
	}
	// Resources look like "Users/{user}/Messages/{id}".
	for i := len(n.Resource) - 1; i >= 0; i-- {
		if n.Resource[i] == '/' {
			return n.Resource[i+1:]
		}
	}
	return n.Resource
}

// Authentic reports whether the notification carries the client state registered for its
// subscription. An account without a stored client state accepts nothing.
func (n Notification) Authentic(clientState string) bool {
	if clientState == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(n.ClientState), []byte(clientState)) == 1
}
