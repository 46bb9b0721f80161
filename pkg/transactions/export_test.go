package transactions

var WithNewID = withNewID
