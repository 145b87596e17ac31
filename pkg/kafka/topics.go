package kafka

import "fmt"

// TopicPrefix namespaces every topic this service touches.
const TopicPrefix = "deskorder"

// Topic builds a namespaced topic name: <prefix>.<domain>.<action>.
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
