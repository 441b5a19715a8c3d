package services

// Services defined in this package:
// - AuthService: authentication, registration and token rotation
// - TermService: the exam term scheduling and approval engine
// - SessionService: exam session windows and their immutability rules
// - CatalogService: rooms, courses and student groups reference data
