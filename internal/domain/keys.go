package domain

// KeyPrefix namespaces every key doclib writes to the store.
const KeyPrefix = "doclib:"
