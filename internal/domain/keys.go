package domain

// KeyPrefix namespaces every key and index the service owns in the store.
const KeyPrefix = "docrag:"
