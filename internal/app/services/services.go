// Package services holds the business logic between controllers and repositories.
//
// Services defined in this package:
//   - AuthService: login and refresh-token rotation
//   - AccountCreator: creates a user together with its faculty or student profile
//   - FacultyService: faculty records, dashboard and enrollment
//   - StudentService: student records, dashboard and profile pictures
//   - ProfilePictureManager: the only writer of stored profile pictures
package services
