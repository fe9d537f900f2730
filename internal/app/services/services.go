package services

// Services defined in this package:
// - CommunityService: community lifecycle, settings and stats
// - MembershipService: joining, leaving and listing members
// - ModerationService: bans and the moderator roster
// - PostService: posts, approval and votes
