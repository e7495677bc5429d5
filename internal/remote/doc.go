// Package remote provisions a hosting environment for a Deployer project.
//
// It reads deploy.yml and .local-server/.env from the project checkout,
// writes the environment specific .env, .htaccess and .htpasswd files and
// uploads them to the shared directory of the chosen stage over SFTP.
package remote
