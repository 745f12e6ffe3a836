package orders

const (
	TopicOrderCreated = "qr.order.created"
	TopicOrderPaid    = "qr.order.paid"
)

// Partition key = order id, so all events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
